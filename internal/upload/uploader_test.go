package upload

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitevoice/internal/offline"
)

type testEnv struct{ online bool }

func (e *testEnv) Now() time.Time { return time.Now() }
func (e *testEnv) Online() bool   { return e.online }

func TestSubmitOnlinePostsAllFields(t *testing.T) {
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		got = map[string]string{}
		for _, k := range []string{"filename", "filetype", "source", "location", "unit", "description", "metadata", "wantAudio"} {
			got[k] = r.FormValue(k)
		}
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		got["file"] = hdr.Filename

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"textResponse":"seinä kunnossa"}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.Client(), nil, &testEnv{online: true})
	res, queued, err := u.Submit(context.Background(), srv.URL, []byte("jpeg"), "wall.jpg", Options{
		Filetype:    "image/jpeg",
		Source:      "camera",
		Location:    "site-3",
		Unit:        "A2",
		Description: "load-bearing wall",
		Metadata:    map[string]string{"floor": "2"},
		WantAudio:   false,
	})
	require.NoError(t, err)
	require.False(t, queued)
	require.Equal(t, "seinä kunnossa", res.Text)

	require.Equal(t, "wall.jpg", got["file"])
	require.Equal(t, "wall.jpg", got["filename"])
	require.Equal(t, "image/jpeg", got["filetype"])
	require.Equal(t, "camera", got["source"])
	require.Equal(t, "site-3", got["location"])
	require.Equal(t, "A2", got["unit"])
	require.Equal(t, "load-bearing wall", got["description"])
	require.JSONEq(t, `{"floor":"2"}`, got["metadata"])
	require.Equal(t, "false", got["wantAudio"])
}

func TestSubmitDecodesAudioResponse(t *testing.T) {
	raw := []byte("mp3-bytes")
	b64 := base64.StdEncoding.EncodeToString(raw)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"textResponse":"ok","audioResponse":"data:audio/mpeg;base64,` + b64 + `"}`))
	}))
	defer srv.Close()

	u := NewUploader(srv.Client(), nil, &testEnv{online: true})
	res, queued, err := u.Submit(context.Background(), srv.URL, []byte("jpeg"), "a.jpg", Options{WantAudio: true})
	require.NoError(t, err)
	require.False(t, queued)
	require.Equal(t, "ok", res.Text)
	require.Equal(t, raw, res.Audio)
}

func TestSubmitOfflineQueues(t *testing.T) {
	q, err := offline.Open(filepath.Join(t.TempDir(), "q.db"))
	require.NoError(t, err)
	defer q.Close()

	u := NewUploader(nil, q, &testEnv{online: false})
	res, queued, err := u.Submit(context.Background(), "https://unreachable.example.com", []byte("jpeg"), "photo1.jpg", Options{WantAudio: true})
	require.NoError(t, err)
	require.True(t, queued)
	require.Nil(t, res)

	items, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "photo1.jpg", items[0].Filename)
	require.True(t, items[0].WantAudio)
}

func TestSubmitServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	u := NewUploader(srv.Client(), nil, &testEnv{online: true})
	_, _, err := u.Submit(context.Background(), srv.URL, []byte("x"), "a.jpg", Options{})
	require.Error(t, err)
}
