package i18n

var fiTable = Table{
	ResetConversation:       "Aloita alusta",
	StartConversationPrompt: "Tervetuloa! Paina painiketta puhuaksesi.",
	GreetingPlayed:          "Tervetuloa! Järjestelmä on valmiina.",
	ReadyToListen:           "Valmiina kuuntelemaan.",
	StartRecording:          "Aloitan nauhoituksen...",
	StopRecording:           "Nauhoitus pysäytetty.",
	SendingToServer:         "Käsitellään viestiäsi...",
	ProcessingResponse:      "Valmistellaan vastausta...",
	PlayingAudio:            "Toistetaan äänivastausta...",
	ReadyForNext:            "Valmis uuteen kysymykseen.",
	ProcessingAudio:         "Käsitellään puheviestiäsi...",
	VoiceError:              "Äänivirhe",
	RecordingFailed:         "Nauhoitus epäonnistui",
	TryAgain:                "Yritä uudestaan",
	UnknownError:            "Tuntematon virhe",
	ListeningClickWhenReady: "Kuuntelen... Paina painiketta kun olet valmis.",

	ImageReceived: "Kuva vastaanotettu",
	FileReceived:  "Tiedosto vastaanotettu",
	VoiceAnswer:   "Äänivastaus",

	PhotoUploaded:        "Kuva lähetetty",
	PhotoUploadedSuccess: "Kuva lähetettiin onnistuneesti",
	UploadError:          "Lähetysvirhe",
	SavedOffline:         "Tallennettu offline-tilassa",
	SavedOfflineDetail:   "Kuva lähetetään kun verkko palaa",
	AnalysisDone:         "Analyysi valmis ja tallennettu",
	AnalysisFailed:       "Tallennus epäonnistui",
}
