package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"sitevoice/pkg/audioconv"
)

// DefaultLoadTimeout bounds how long a remote audio resource may take
// to load before the play operation fails instead of hanging.
const DefaultLoadTimeout = 5 * time.Second

// Player plays exactly one clip at a time. Starting a new clip stops
// any prior one before the first sample of the new one is queued.
type Player struct {
	mu      sync.Mutex
	stop    chan struct{}
	playing bool

	http *http.Client

	speakerInit  func(sr beep.SampleRate, bufferSize int) error
	speakerPlay  func(s ...beep.Streamer)
	speakerClear func()
}

func NewPlayer(loadTimeout time.Duration) *Player {
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	return &Player{
		http:         &http.Client{Timeout: loadTimeout},
		speakerInit:  speaker.Init,
		speakerPlay:  speaker.Play,
		speakerClear: speaker.Clear,
	}
}

// PlayBytes decodes and plays an in-memory clip, returning when
// playback ends, is stopped, or fails.
func (p *Player) PlayBytes(ctx context.Context, data []byte) error {
	clip, err := audioconv.Decode(data)
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}
	return p.play(ctx, clip)
}

// PlayFile plays a local clip, e.g. the greeting.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load audio file: %w", err)
	}
	return p.PlayBytes(ctx, data)
}

// PlayURL fetches a remote clip and plays it. The fetch is bounded by
// the load timeout so a stalled resource cannot wedge the caller.
func (p *Player) PlayURL(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("load audio resource: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("load audio resource: status %d", res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("load audio resource: %w", err)
	}
	return p.PlayBytes(ctx, data)
}

func (p *Player) play(ctx context.Context, clip *audioconv.Clip) error {
	p.Stop()

	stop := make(chan struct{})
	p.mu.Lock()
	p.stop = stop
	p.playing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.stop == stop {
			p.stop = nil
			p.playing = false
		}
		p.mu.Unlock()
	}()

	sr := beep.SampleRate(clip.SampleRate)
	if err := p.speakerInit(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	done := make(chan struct{})
	seq := beep.Seq(&pcmStreamer{samples: clip.Samples}, beep.Callback(func() {
		close(done)
	}))

	// queue under the lock so a concurrent Stop either runs before the
	// check (and nothing is queued) or after (and clears the clip)
	p.mu.Lock()
	select {
	case <-stop:
		p.mu.Unlock()
		return nil
	default:
	}
	p.speakerPlay(seq)
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-stop:
		// the stopper already cleared the speaker
		return nil
	case <-ctx.Done():
		p.speakerClear()
		return ctx.Err()
	}
}

// Stop halts playback immediately. Safe when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
		p.playing = false
		p.speakerClear()
	}
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// pcmStreamer feeds decoded mono PCM to the speaker on both channels.
type pcmStreamer struct {
	samples []float32
	pos     int
}

func (s *pcmStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for i := range out {
		if s.pos >= len(s.samples) {
			break
		}
		v := float64(s.samples[s.pos])
		out[i][0] = v
		out[i][1] = v
		s.pos++
		n++
	}
	return n, true
}

func (s *pcmStreamer) Err() error { return nil }
