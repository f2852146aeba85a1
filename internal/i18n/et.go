package i18n

var etTable = Table{
	ResetConversation:       "Alusta uuesti",
	StartConversationPrompt: "Tere tulemast! Vajuta nuppu, et rääkida.",
	GreetingPlayed:          "Tere tulemast! Süsteem on valmis.",
	ReadyToListen:           "Valmis kuulama.",
	StartRecording:          "Alustan salvestamist...",
	StopRecording:           "Salvestamine peatatud.",
	SendingToServer:         "Töötlen sinu sõnumit...",
	ProcessingResponse:      "Valmistan vastust ette...",
	PlayingAudio:            "Esitan häälvastust...",
	ReadyForNext:            "Valmis uueks küsimuseks.",
	ProcessingAudio:         "Töötlen sinu häälsõnumit...",
	VoiceError:              "Häälviga",
	RecordingFailed:         "Salvestamine ebaõnnestus",
	TryAgain:                "Proovi uuesti",
	UnknownError:            "Tundmatu viga",
	ListeningClickWhenReady: "Kuulan... Vajuta nuppu, kui oled valmis.",

	ImageReceived: "Pilt vastu võetud",
	FileReceived:  "Fail vastu võetud",
	VoiceAnswer:   "Häälvastus",

	PhotoUploaded:        "Pilt saadetud",
	PhotoUploadedSuccess: "Pilt saadeti edukalt",
	UploadError:          "Saatmisviga",
	SavedOffline:         "Salvestatud võrguühenduseta",
	SavedOfflineDetail:   "Pilt saadetakse, kui võrk taastub",
	AnalysisDone:         "Analüüs valmis ja salvestatud",
	AnalysisFailed:       "Salvestamine ebaõnnestus",
}
