// Package upload submits photos and files captured on site to the
// analysis endpoint, falling back to the offline queue when there is
// no connectivity.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	log "log/slog"

	"sitevoice/internal/conversation"
	"sitevoice/internal/offline"
	"sitevoice/internal/webhook"
)

// Options carry the submission metadata the endpoint understands.
type Options struct {
	Filetype    string // MIME type of the payload, e.g. image/jpeg
	Source      string // "camera" or "file_upload"
	Location    string
	Unit        string
	Description string
	Metadata    map[string]string
	WantAudio   bool
}

// Result is the endpoint's reply: analysis text and, when asked for,
// a decoded audio answer ready to play.
type Result struct {
	Text  string
	Audio []byte
}

type Uploader struct {
	http  *http.Client
	queue *offline.Queue
	env   conversation.Env
}

func NewUploader(httpClient *http.Client, queue *offline.Queue, env conversation.Env) *Uploader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Uploader{http: httpClient, queue: queue, env: env}
}

// Submit uploads the blob, or queues it when offline. The bool result
// reports whether the item went to the offline queue instead of the
// network.
func (u *Uploader) Submit(ctx context.Context, endpoint string, blob []byte, filename string, opts Options) (*Result, bool, error) {
	if u.env != nil && !u.env.Online() {
		if u.queue == nil {
			return nil, false, fmt.Errorf("offline and no queue configured")
		}
		if _, err := u.queue.Save(blob, filename, opts.WantAudio); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	res, err := u.post(ctx, endpoint, blob, filename, opts)
	if err != nil {
		return nil, false, err
	}
	return res, false, nil
}

func (u *Uploader) post(ctx context.Context, endpoint string, blob []byte, filename string, opts Options) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if opts.Filetype != "" {
		hdr.Set("Content-Type", opts.Filetype)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(blob); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"filename":    filename,
		"filetype":    opts.Filetype,
		"source":      opts.Source,
		"location":    opts.Location,
		"unit":        opts.Unit,
		"description": opts.Description,
		"wantAudio":   strconv.FormatBool(opts.WantAudio),
	}
	for name, val := range fields {
		if val == "" {
			continue
		}
		if err := mw.WriteField(name, val); err != nil {
			return nil, err
		}
	}
	if len(opts.Metadata) > 0 {
		meta, err := json.Marshal(opts.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		if err := mw.WriteField("metadata", string(meta)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json,*/*")

	log.Debug("Uploading file", "endpoint", endpoint, "filename", filename, "bytes", len(blob))

	res, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webhook.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &webhook.ServerError{Status: res.StatusCode}
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webhook.ErrNetwork, err)
	}

	var wire struct {
		AudioResponse string `json:"audioResponse"`
		TextResponse  string `json:"textResponse"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &wire); err != nil {
			// some deployments answer with a bare confirmation string
			return &Result{Text: string(payload)}, nil
		}
	}

	out := &Result{Text: wire.TextResponse}
	if opts.WantAudio && wire.AudioResponse != "" {
		audio, err := webhook.DecodeAudioPayload(wire.AudioResponse)
		if err != nil {
			return nil, fmt.Errorf("decode audio response: %w", err)
		}
		out.Audio = audio
	}
	return out, nil
}
