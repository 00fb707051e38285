package interactions_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valinor-ai/supportdesk/internal/discordapi"
)

type recordedCall struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeDiscord is an in-process stand-in for the Discord REST API.
type fakeDiscord struct {
	t      *testing.T
	server *httptest.Server

	mu    sync.Mutex
	calls []recordedCall

	memberBody    string
	memberStatus  int
	channelStatus int
	messageStatus int
}

func newFakeDiscord(t *testing.T) *fakeDiscord {
	t.Helper()
	f := &fakeDiscord{
		t:             t,
		memberBody:    `{"nick":"Ali","user":{"id":"222","username":"alice"}}`,
		memberStatus:  http.StatusOK,
		channelStatus: http.StatusCreated,
		messageStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /guilds/{guild}/members/{user}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.reply(w, f.memberStatus, f.memberBody)
	})
	mux.HandleFunc("POST /guilds/{guild}/channels", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.reply(w, f.channelStatus, `{"id":"333","name":"ali","type":0}`)
	})
	mux.HandleFunc("POST /channels/{channel}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.reply(w, f.messageStatus, `{"id":"444"}`)
	})
	mux.HandleFunc("POST /webhooks/{application}/{token}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.reply(w, http.StatusOK, `{"id":"555"}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDiscord) client() *discordapi.Client {
	return discordapi.New("bot-token", discordapi.WithBaseURL(f.server.URL))
}

func (f *fakeDiscord) record(r *http.Request) {
	call := recordedCall{Method: r.Method, Path: r.URL.Path}
	raw, err := io.ReadAll(r.Body)
	require.NoError(f.t, err)
	if len(raw) > 0 {
		require.NoError(f.t, json.Unmarshal(raw, &call.Body))
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeDiscord) reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= http.StatusOK && status < http.StatusMultipleChoices && status != http.StatusNoContent {
		_, _ = io.WriteString(w, body)
		return
	}
	if status >= http.StatusBadRequest {
		_, _ = io.WriteString(w, `{"message":"Unknown Member","code":10007}`)
	}
}

func (f *fakeDiscord) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeDiscord) paths() []string {
	var paths []string
	for _, c := range f.recorded() {
		paths = append(paths, c.Method+" "+c.Path)
	}
	return paths
}
