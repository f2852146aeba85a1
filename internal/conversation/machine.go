package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	log "log/slog"

	"sitevoice/internal/audio"
	"sitevoice/internal/i18n"
	"sitevoice/internal/webhook"
)

// Recorder is the microphone capture collaborator.
type Recorder interface {
	Start() error
	Stop() ([]byte, error)
	Cleanup()
}

// Player is the audio output collaborator.
type Player interface {
	PlayBytes(ctx context.Context, data []byte) error
	PlayURL(ctx context.Context, url string) error
	PlayFile(ctx context.Context, path string) error
	Stop()
}

// Sender dispatches a finished clip to the webhook.
type Sender interface {
	SendAudio(ctx context.Context, url string, clip []byte) (*webhook.Response, error)
	Cancel()
}

// Notifier surfaces transient user-visible notifications.
type Notifier interface {
	Notify(title, body string)
}

// ErrBusy means the press arrived while the machine could not accept
// one (sending or waiting). The press is simply ignored.
var ErrBusy = errors.New("interaction already in progress")

type Config struct {
	Language     i18n.Language
	WebhookURL   string
	GreetingPath string
}

// Machine owns the capture → send → respond → playback pipeline and
// decides what the primary action does in each phase. All failure
// paths land back in idle.
type Machine struct {
	action sync.Mutex // serializes primary actions

	mu            sync.Mutex // guards everything below
	cfg           Config
	state         State
	first         bool
	waitingToStop bool

	msgs   *MessageLog
	rec    Recorder
	player Player
	sender Sender
	notify Notifier
	env    Env
}

func NewMachine(cfg Config, rec Recorder, player Player, sender Sender, notify Notifier, env Env) *Machine {
	m := &Machine{
		cfg:    cfg,
		state:  idleState(),
		first:  true,
		rec:    rec,
		player: player,
		sender: sender,
		notify: notify,
		env:    env,
	}
	m.msgs = NewMessageLog(env.Now)
	return m
}

// PrimaryAction is the single entry point behind the one user-facing
// button. First press starts an interaction (greeting on the very
// first one, then recording); the next press, while recording, stops
// and sends. Presses during send/playback are ignored.
func (m *Machine) PrimaryAction(ctx context.Context) error {
	if !m.action.TryLock() {
		return ErrBusy
	}
	defer m.action.Unlock()

	m.mu.Lock()
	t := i18n.Get(m.cfg.Language)
	waiting := m.waitingToStop
	phase := m.state.Phase
	m.mu.Unlock()

	// a new interaction always silences whatever is still playing
	m.player.Stop()

	if waiting {
		return m.stopAndSend(ctx, t)
	}
	if phase != PhaseIdle {
		return ErrBusy
	}
	return m.startInteraction(ctx, t)
}

func (m *Machine) startInteraction(ctx context.Context, t i18n.Table) error {
	m.mu.Lock()
	first := m.first
	greeting := m.cfg.GreetingPath
	m.mu.Unlock()

	if first {
		m.setState(State{Phase: PhaseGreeting})
		m.msgs.Append(RoleSystem, t.StartConversationPrompt)

		// the greeting must never block forward progress
		if greeting == "" {
			m.msgs.Append(RoleSystem, t.ReadyToListen)
		} else if err := m.player.PlayFile(ctx, greeting); err != nil {
			log.Warn("Greeting playback failed, continuing", "err", err)
			m.msgs.Append(RoleSystem, t.ReadyToListen)
		} else {
			m.msgs.Append(RoleSystem, t.GreetingPlayed)
		}

		m.mu.Lock()
		m.first = false
		m.mu.Unlock()
	}

	m.setState(State{Phase: PhaseRecording, IsRecording: true})
	m.msgs.Append(RoleSystem, t.StartRecording)

	if err := m.rec.Start(); err != nil {
		return m.fail(t, err)
	}

	m.mu.Lock()
	m.waitingToStop = true
	m.mu.Unlock()

	m.msgs.Append(RoleSystem, t.ListeningClickWhenReady)
	return nil
}

func (m *Machine) stopAndSend(ctx context.Context, t i18n.Table) error {
	m.mu.Lock()
	m.waitingToStop = false
	url := m.cfg.WebhookURL
	m.mu.Unlock()

	m.setState(State{Phase: PhaseSending})
	m.msgs.Append(RoleSystem, t.StopRecording)

	clip, err := m.rec.Stop()
	if err != nil {
		if errors.Is(err, audio.ErrNoAudio) {
			err = errors.New(t.RecordingFailed)
		}
		return m.fail(t, err)
	}

	log.Debug("Recording finalized", "bytes", len(clip))
	m.msgs.Append(RoleUser, t.ProcessingAudio)

	m.setState(State{Phase: PhaseWaiting})
	m.msgs.Append(RoleSystem, t.SendingToServer)

	resp, err := m.sender.SendAudio(ctx, url, clip)
	if err != nil {
		if errors.Is(err, webhook.ErrCancelled) {
			// superseded by a newer request: routine, not a failure
			m.setState(idleState())
			return nil
		}
		return m.fail(t, err)
	}

	m.setState(State{Phase: PhasePlaying, IsPlaying: true})
	m.msgs.Append(RoleSystem, t.ProcessingResponse)

	text := resp.Text
	if text == "" && resp.FileURL != "" {
		if strings.HasPrefix(resp.FileType, "image/") {
			text = t.ImageReceived
		} else {
			text = t.FileReceived
		}
	}
	if text == "" && resp.HasAudio() {
		text = t.VoiceAnswer
	}
	if text == "" {
		text = t.UnknownError
	}
	m.msgs.AppendAssistant(text, resp.AudioURL, resp.FileURL, resp.FileType)

	if len(resp.Audio) > 0 {
		m.msgs.Append(RoleSystem, t.PlayingAudio)
		if err := m.player.PlayBytes(ctx, resp.Audio); err != nil {
			return m.fail(t, err)
		}
	} else if resp.AudioURL != "" {
		m.msgs.Append(RoleSystem, t.PlayingAudio)
		if err := m.player.PlayURL(ctx, resp.AudioURL); err != nil {
			return m.fail(t, err)
		}
	}

	m.setState(idleState())
	m.msgs.Append(RoleSystem, t.ReadyForNext)
	return nil
}

// fail is the single funnel for every error: release the hardware,
// log a system turn, notify, and land in idle.
func (m *Machine) fail(t i18n.Table, err error) error {
	log.Error("Voice interaction failed", "err", err)

	m.rec.Cleanup()
	m.player.Stop()

	m.mu.Lock()
	m.waitingToStop = false
	m.state = State{Phase: PhaseIdle, LastError: err.Error()}
	m.mu.Unlock()

	m.msgs.Append(RoleSystem, t.VoiceError+": "+err.Error())
	if m.notify != nil {
		m.notify.Notify(t.VoiceError, err.Error())
	}
	return err
}

// Reset cancels in-flight work, stops capture and playback, clears
// the log and restores the greeting for the next interaction.
func (m *Machine) Reset() {
	// unblock an in-flight send so the action lock frees up
	m.sender.Cancel()
	m.player.Stop()
	m.rec.Cleanup()

	m.action.Lock()
	defer m.action.Unlock()

	// the action we were racing may have started capture or playback
	// after the first pass above
	m.player.Stop()
	m.rec.Cleanup()

	m.mu.Lock()
	m.first = true
	m.waitingToStop = false
	m.state = idleState()
	m.mu.Unlock()

	m.msgs.Clear()
	log.Info("Conversation reset")
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State returns a copy of the current interaction state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WaitingToStop reports whether the next press will stop and send.
func (m *Machine) WaitingToStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitingToStop
}

// Messages returns the conversation turns in order.
func (m *Machine) Messages() []Message {
	return m.msgs.Messages()
}

// UpdateConfig applies runtime configuration (language selector and
// webhook URL from the UI).
func (m *Machine) UpdateConfig(lang i18n.Language, webhookURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i18n.Valid(lang) {
		m.cfg.Language = lang
	}
	if webhookURL != "" {
		m.cfg.WebhookURL = webhookURL
	}
}

// Config returns a copy of the current configuration.
func (m *Machine) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}
