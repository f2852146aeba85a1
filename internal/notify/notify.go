// Package notify surfaces transient notifications to the worker:
// a desktop toast via notify-send and an audible cue.
package notify

import (
	"os"
	"os/exec"
	"time"

	log "log/slog"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

type Desktop struct{}

// Notify shows a transient toast. Failures are logged and ignored:
// a missing notification daemon must never break the interaction.
func (Desktop) Notify(title, body string) {
	if err := exec.Command("notify-send", "-t", "4000", title, body).Run(); err != nil {
		log.Debug("notify-send failed", "err", err)
	}
}

// Beep plays a short cue clip, used when listening starts.
func Beep(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
