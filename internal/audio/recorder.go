package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"sitevoice/pkg/audioconv"
)

const (
	// SampleRate is what the webhook pipeline expects for speech.
	SampleRate = 16000

	frameSize = 1024
)

var (
	ErrNoAudio          = errors.New("recording produced no audio")
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no active recording")
)

// Recorder captures microphone input. One session at a time: a started
// session must be stopped or cleaned up before the next one.
type Recorder struct {
	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	samples []float32
	capErr  error
	maxDur  time.Duration
}

func NewRecorder() *Recorder { return &Recorder{} }

// SetMaxDuration caps a capture session. Zero disables the cap and the
// session runs until Stop.
func (r *Recorder) SetMaxDuration(d time.Duration) {
	r.mu.Lock()
	r.maxDur = d
	r.mu.Unlock()
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Start opens the default input stream and buffers frames until Stop
// or Cleanup. A failure to open the device maps to a permission-style
// error the caller can surface.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		return ErrAlreadyRecording
	}

	buf := make([]float32, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRate), len(buf), buf)
	if err != nil {
		return fmt.Errorf("microphone unavailable: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("microphone unavailable: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	r.stop = stop
	r.done = done
	r.samples = nil
	r.capErr = nil

	maxSamples := 0
	if r.maxDur > 0 {
		maxSamples = int(r.maxDur.Seconds() * SampleRate)
	}

	go func() {
		defer close(done)
		defer stream.Close()
		defer stream.Stop()

		var out []float32
		for {
			if maxSamples > 0 && len(out) >= maxSamples {
				r.mu.Lock()
				r.samples = out
				r.mu.Unlock()
				return
			}
			select {
			case <-stop:
				r.mu.Lock()
				r.samples = out
				r.mu.Unlock()
				return
			default:
			}

			if err := stream.Read(); err != nil {
				r.mu.Lock()
				r.capErr = err
				r.samples = out
				r.mu.Unlock()
				return
			}
			out = append(out, buf...)
		}
	}()

	return nil
}

// Stop finalizes the session and returns the captured speech as a WAV
// blob, releasing the input stream. Zero captured samples is an error:
// the caller must never forward an empty clip.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if r.stop == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	stop, done := r.stop, r.done
	r.stop = nil
	r.done = nil
	r.mu.Unlock()

	close(stop)
	<-done

	r.mu.Lock()
	samples, capErr := r.samples, r.capErr
	r.samples = nil
	r.mu.Unlock()

	if capErr != nil {
		return nil, fmt.Errorf("capture failed: %w", capErr)
	}
	if len(samples) == 0 {
		return nil, ErrNoAudio
	}

	blob, err := audioconv.EncodeWAV(samples, SampleRate)
	if err != nil {
		return nil, fmt.Errorf("encode recording: %w", err)
	}
	return blob, nil
}

// Cleanup releases the stream regardless of state, discarding whatever
// was buffered. Idempotent; used on error paths.
func (r *Recorder) Cleanup() {
	r.mu.Lock()
	if r.stop == nil {
		r.mu.Unlock()
		return
	}
	stop, done := r.stop, r.done
	r.stop = nil
	r.done = nil
	r.mu.Unlock()

	close(stop)
	<-done

	r.mu.Lock()
	r.samples = nil
	r.capErr = nil
	r.mu.Unlock()
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}
