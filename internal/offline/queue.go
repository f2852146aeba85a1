// Package offline keeps captures taken without connectivity in a
// durable local queue until they can be submitted.
package offline

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	log "log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Item is one pending submission. Items are independent: sync retries
// each on its own and no ordering between them is promised.
type Item struct {
	ID        string
	Payload   []byte
	Filename  string
	CreatedAt time.Time
	WantAudio bool
}

type Queue struct {
	db   *sql.DB
	http *http.Client
}

const schema = `
CREATE TABLE IF NOT EXISTS pending_uploads (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	filename   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	want_audio INTEGER NOT NULL
);`

// Open creates or opens the queue database at path.
func Open(path string) (*Queue, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init queue schema: %w", err)
	}
	return &Queue{db: db, http: &http.Client{Timeout: 60 * time.Second}}, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// Save stores a capture durably and returns immediately; it never
// waits on connectivity.
func (q *Queue) Save(blob []byte, filename string, wantAudio bool) (string, error) {
	id := uuid.NewString()
	_, err := q.db.Exec(
		`INSERT INTO pending_uploads (id, payload, filename, created_at, want_audio) VALUES (?, ?, ?, ?, ?)`,
		id,
		base64.StdEncoding.EncodeToString(blob),
		filename,
		time.Now().UnixMilli(),
		boolToInt(wantAudio),
	)
	if err != nil {
		return "", fmt.Errorf("save offline item: %w", err)
	}
	log.Info("Saved capture offline", "id", id, "filename", filename, "bytes", len(blob))
	return id, nil
}

// Pending lists everything still queued.
func (q *Queue) Pending() ([]Item, error) {
	rows, err := q.db.Query(
		`SELECT id, payload, filename, created_at, want_audio FROM pending_uploads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it      Item
			payload string
			millis  int64
			want    int
		)
		if err := rows.Scan(&it.ID, &payload, &it.Filename, &millis, &want); err != nil {
			return nil, err
		}
		blob, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			log.Warn("Skipping corrupt offline item", "id", it.ID, "err", err)
			continue
		}
		it.Payload = blob
		it.CreatedAt = time.UnixMilli(millis)
		it.WantAudio = want != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// SyncPending resubmits every queued item to the endpoint, removing
// only the ones the server accepted. Failures stay queued for a later
// attempt. Returns the number of items synced.
func (q *Queue) SyncPending(ctx context.Context, endpoint string) (int, error) {
	items, err := q.Pending()
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, it := range items {
		if err := q.submit(ctx, endpoint, it); err != nil {
			log.Warn("Offline sync failed, keeping item", "id", it.ID, "err", err)
			continue
		}
		if _, err := q.db.Exec(`DELETE FROM pending_uploads WHERE id = ?`, it.ID); err != nil {
			return synced, fmt.Errorf("remove synced item: %w", err)
		}
		log.Info("Synced offline item", "id", it.ID, "filename", it.Filename)
		synced++
	}
	return synced, nil
}

func (q *Queue) submit(ctx context.Context, endpoint string, it Item) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", it.Filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(it.Payload); err != nil {
		return err
	}
	if err := mw.WriteField("filename", it.Filename); err != nil {
		return err
	}
	if err := mw.WriteField("wantAudio", strconv.FormatBool(it.WantAudio)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := q.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("server error %d", res.StatusCode)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
