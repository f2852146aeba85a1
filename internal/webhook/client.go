package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	log "log/slog"
)

var (
	// ErrCancelled marks a request superseded by a newer one. Routine,
	// never surfaced to the user.
	ErrCancelled = errors.New("request cancelled")

	// ErrNetwork marks a connectivity-level failure.
	ErrNetwork = errors.New("network problem, check your connection")
)

// ServerError is a non-2xx answer from the webhook.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d", e.Status)
}

// Response is the canonical shape produced regardless of which wire
// format the server actually returned.
type Response struct {
	Text     string
	Audio    []byte // decoded, locally playable
	AudioURL string
	FileURL  string
	FileType string
}

func (r *Response) HasAudio() bool {
	return len(r.Audio) > 0 || r.AudioURL != ""
}

// Client posts recorded clips to the configured webhook. At most one
// request is in flight; sending a new one cancels the previous.
type Client struct {
	http *http.Client

	mu       sync.Mutex
	inflight *inflight
}

type inflight struct {
	cancel context.CancelFunc
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient}
}

// SendAudio uploads the clip as multipart form data and normalizes the
// answer. The clip travels in field data0 with the declared filename
// speech.webm, which is what the webhook pipeline keys on.
func (c *Client) SendAudio(ctx context.Context, url string, clip []byte) (*Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	mine := &inflight{cancel: cancel}

	c.mu.Lock()
	if c.inflight != nil {
		c.inflight.cancel()
	}
	c.inflight = mine
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		if c.inflight == mine {
			c.inflight = nil
		}
		c.mu.Unlock()
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="data0"; filename="speech.webm"`)
	hdr.Set("Content-Type", "audio/webm")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(clip); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "audio/mpeg,application/json,*/*")

	log.Debug("Sending clip to webhook", "url", url, "bytes", len(clip))

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &ServerError{Status: res.StatusCode}
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return Normalize(res.Header.Get("Content-Type"), payload)
}

// Cancel aborts the request in flight, if any.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}

// wirePayload covers every JSON field the webhook has been observed to
// return. Normalization collapses them once, here, so the rest of the
// code never inspects optional fields again.
type wirePayload struct {
	Answer        string `json:"answer"`
	Response      string `json:"response"`
	Text          string `json:"text"`
	TextResponse  string `json:"textResponse"`
	AudioURL      string `json:"audioUrl"`
	AudioResponse string `json:"audioResponse"`
	FileURL       string `json:"fileUrl"`
	FileResponse  string `json:"fileResponse"`
	FileType      string `json:"fileType"`
	Success       *bool  `json:"success"`
}

// Normalize turns any of the documented wire shapes into a Response:
// a raw audio body, JSON with text and/or an audio URL, JSON with a
// base64 audio payload, or JSON with a file attachment. A body that is
// neither audio nor JSON is passed through verbatim as the reply text.
func Normalize(contentType string, payload []byte) (*Response, error) {
	if strings.Contains(contentType, "audio") {
		if len(payload) == 0 {
			return nil, fmt.Errorf("empty audio body")
		}
		return &Response{Audio: payload}, nil
	}

	var wire wirePayload
	if err := json.Unmarshal(payload, &wire); err != nil {
		return &Response{Text: string(payload)}, nil
	}

	out := &Response{
		Text:     firstNonEmpty(wire.Answer, wire.Response, wire.Text, wire.TextResponse),
		AudioURL: wire.AudioURL,
		FileURL:  firstNonEmpty(wire.FileURL, wire.FileResponse),
		FileType: wire.FileType,
	}

	if wire.AudioResponse != "" {
		audio, err := DecodeAudioPayload(wire.AudioResponse)
		if err != nil {
			return nil, fmt.Errorf("decode audio response: %w", err)
		}
		out.Audio = audio
	}

	return out, nil
}

// DecodeAudioPayload decodes a base64 audio payload, tolerating an
// optional data-URI scheme prefix ("data:audio/mpeg;base64,....").
func DecodeAudioPayload(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, "base64,")
		if idx < 0 {
			return nil, errors.New("data URI without base64 payload")
		}
		s = s[idx+len("base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
