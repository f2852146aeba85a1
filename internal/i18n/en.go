package i18n

var enTable = Table{
	ResetConversation:       "Start over",
	StartConversationPrompt: "Welcome! Press the button to speak.",
	GreetingPlayed:          "Welcome! The system is ready.",
	ReadyToListen:           "Ready to listen.",
	StartRecording:          "Starting recording...",
	StopRecording:           "Recording stopped.",
	SendingToServer:         "Processing your message...",
	ProcessingResponse:      "Preparing the answer...",
	PlayingAudio:            "Playing the voice answer...",
	ReadyForNext:            "Ready for the next question.",
	ProcessingAudio:         "Processing your voice message...",
	VoiceError:              "Voice error",
	RecordingFailed:         "Recording failed",
	TryAgain:                "Try again",
	UnknownError:            "Unknown error",
	ListeningClickWhenReady: "Listening... Press the button when you are done.",

	ImageReceived: "Image received",
	FileReceived:  "File received",
	VoiceAnswer:   "Voice answer",

	PhotoUploaded:        "Photo uploaded",
	PhotoUploadedSuccess: "Photo was uploaded successfully",
	UploadError:          "Upload error",
	SavedOffline:         "Saved in offline mode",
	SavedOfflineDetail:   "The photo will be sent when the network returns",
	AnalysisDone:         "Analysis done and saved",
	AnalysisFailed:       "Saving failed",
}
