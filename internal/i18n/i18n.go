// Package i18n holds the user-facing phrase tables. The daemon speaks
// Finnish by default; Estonian and English are selectable at runtime.
package i18n

type Language string

const (
	Finnish  Language = "fi"
	Estonian Language = "et"
	English  Language = "en"
)

type Table struct {
	ResetConversation       string
	StartConversationPrompt string
	GreetingPlayed          string
	ReadyToListen           string
	StartRecording          string
	StopRecording           string
	SendingToServer         string
	ProcessingResponse      string
	PlayingAudio            string
	ReadyForNext            string
	ProcessingAudio         string
	VoiceError              string
	RecordingFailed         string
	TryAgain                string
	UnknownError            string
	ListeningClickWhenReady string

	ImageReceived string
	FileReceived  string
	VoiceAnswer   string

	PhotoUploaded        string
	PhotoUploadedSuccess string
	UploadError          string
	SavedOffline         string
	SavedOfflineDetail   string
	AnalysisDone         string
	AnalysisFailed       string
}

// Get returns the phrase table for lang, falling back to Finnish.
func Get(lang Language) Table {
	switch lang {
	case Estonian:
		return etTable
	case English:
		return enTable
	default:
		return fiTable
	}
}

// Valid reports whether lang is one of the supported selectors.
func Valid(lang Language) bool {
	switch lang {
	case Finnish, Estonian, English:
		return true
	}
	return false
}
