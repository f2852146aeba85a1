package conversation

// Phase is the single active state of the machine. It is the sole
// authority for what the primary action does next.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseGreeting  Phase = "greeting"
	PhaseRecording Phase = "recording"
	PhaseSending   Phase = "sending"
	PhaseWaiting   Phase = "waiting"
	PhasePlaying   Phase = "playing"
)

// State is owned by the Machine and mutated only through its
// transitions; callers get copies.
type State struct {
	Phase       Phase  `json:"phase"`
	IsRecording bool   `json:"isRecording"`
	IsPlaying   bool   `json:"isPlaying"`
	LastError   string `json:"lastError,omitempty"`
}

func idleState() State {
	return State{Phase: PhaseIdle}
}
