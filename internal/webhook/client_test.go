package webhook

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRawAudioBody(t *testing.T) {
	resp, err := Normalize("audio/mpeg", []byte{0xff, 0xfb, 0x90, 0x00})
	require.NoError(t, err)
	require.Empty(t, resp.Text)
	require.NotEmpty(t, resp.Audio)
	require.True(t, resp.HasAudio())
}

func TestNormalizeEmptyAudioBody(t *testing.T) {
	_, err := Normalize("audio/mpeg", nil)
	require.Error(t, err)
}

func TestNormalizeJSONText(t *testing.T) {
	for _, field := range []string{"answer", "response", "text", "textResponse"} {
		resp, err := Normalize("application/json", []byte(`{"`+field+`":"hello"}`))
		require.NoError(t, err, field)
		require.Equal(t, "hello", resp.Text, field)
		require.False(t, resp.HasAudio(), field)
	}
}

func TestNormalizeJSONTextAndAudioURL(t *testing.T) {
	resp, err := Normalize("application/json",
		[]byte(`{"text":"tervetuloa","audioUrl":"https://cdn.example.com/a.mp3"}`))
	require.NoError(t, err)
	require.Equal(t, "tervetuloa", resp.Text)
	require.Equal(t, "https://cdn.example.com/a.mp3", resp.AudioURL)
	require.True(t, resp.HasAudio())
}

func TestNormalizeJSONBase64Audio(t *testing.T) {
	raw := []byte("fake-mp3-bytes")
	b64 := base64.StdEncoding.EncodeToString(raw)

	for name, payload := range map[string]string{
		"bare":    `{"audioResponse":"` + b64 + `"}`,
		"dataURI": `{"audioResponse":"data:audio/mpeg;base64,` + b64 + `"}`,
	} {
		resp, err := Normalize("application/json", []byte(payload))
		require.NoError(t, err, name)
		require.Equal(t, raw, resp.Audio, name)
	}
}

func TestNormalizeJSONBadBase64(t *testing.T) {
	_, err := Normalize("application/json", []byte(`{"audioResponse":"%%%not-base64%%%"}`))
	require.Error(t, err)
}

func TestNormalizeJSONAttachment(t *testing.T) {
	resp, err := Normalize("application/json",
		[]byte(`{"fileUrl":"https://files.example.com/plan.pdf","fileType":"application/pdf"}`))
	require.NoError(t, err)
	require.Empty(t, resp.Text)
	require.Equal(t, "https://files.example.com/plan.pdf", resp.FileURL)
	require.Equal(t, "application/pdf", resp.FileType)

	resp, err = Normalize("application/json", []byte(`{"fileResponse":"https://files.example.com/x.jpg"}`))
	require.NoError(t, err)
	require.Equal(t, "https://files.example.com/x.jpg", resp.FileURL)
}

func TestNormalizePlainTextVerbatim(t *testing.T) {
	resp, err := Normalize("text/plain", []byte("arvioitu toimitus huomenna"))
	require.NoError(t, err)
	require.Equal(t, "arvioitu toimitus huomenna", resp.Text)
}

func TestSendAudioPostsMultipart(t *testing.T) {
	var gotField, gotFilename, gotAccept string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("data0")
		require.NoError(t, err)
		defer f.Close()
		gotField = "data0"
		gotFilename = hdr.Filename
		gotAccept = r.Header.Get("Accept")
		gotBody, err = io.ReadAll(f)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"kuitti"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	resp, err := c.SendAudio(context.Background(), srv.URL, []byte("clip-bytes"))
	require.NoError(t, err)
	require.Equal(t, "kuitti", resp.Text)
	require.Equal(t, "data0", gotField)
	require.Equal(t, "speech.webm", gotFilename)
	require.Equal(t, "audio/mpeg,application/json,*/*", gotAccept)
	require.Equal(t, []byte("clip-bytes"), gotBody)
}

func TestSendAudioServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	_, err := c.SendAudio(context.Background(), srv.URL, []byte("x"))
	var se *ServerError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadGateway, se.Status)
}

func TestSendAudioNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(nil)
	_, err := c.SendAudio(context.Background(), srv.URL, []byte("x"))
	require.ErrorIs(t, err, ErrNetwork)
}

func TestSecondRequestCancelsFirst(t *testing.T) {
	release := make(chan struct{})
	first := make(chan struct{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case first <- struct{}{}:
			// first request parks until the test releases it
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"second"}`))
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.Client())

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = c.SendAudio(context.Background(), srv.URL, []byte("a"))
	}()

	// wait until the first request is parked inside the handler
	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the server")
	}
	first <- struct{}{} // keep the slot occupied for the second request

	resp, err := c.SendAudio(context.Background(), srv.URL, []byte("b"))
	require.NoError(t, err)
	require.Equal(t, "second", resp.Text)

	wg.Wait()
	require.ErrorIs(t, firstErr, ErrCancelled)
}

func TestCancelAbortsInflight(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// drain the body so the server notices the client going away
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.Client())

	done := make(chan error, 1)
	go func() {
		_, err := c.SendAudio(context.Background(), srv.URL, []byte("x"))
		done <- err
	}()

	<-started
	c.Cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request never returned")
	}
}
