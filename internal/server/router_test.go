package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/policyswarm/agent/conversation"
	"github.com/BaSui01/policyswarm/agent/framework"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	status  conversation.Status
	snap    framework.Snapshot
	history []float64
}

func (f *fakeSource) Status() conversation.Status  { return f.status }
func (f *fakeSource) Snapshot() framework.Snapshot { return f.snap }
func (f *fakeSource) LeaningHistory() []float64    { return f.history }

type fakeRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *fakeRecorder) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, method+" "+path)
}

func newSource() *fakeSource {
	return &fakeSource{
		status: conversation.Status{RunID: "run-1", State: conversation.StateActive, Turn: 3, TotalTurns: 10},
		snap: framework.Snapshot{
			Proposals: "Carbon dividend",
			Metrics:   framework.Metrics{Economy: 0.5},
			Leaning:   0.1,
		},
		history: []float64{0, 0.05, 0.1},
	}
}

func TestRouter_Health(t *testing.T) {
	srv := httptest.NewServer(NewRouter(RouterConfig{Source: newSource()}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "active", body["state"])
}

func TestRouter_State(t *testing.T) {
	rec := &fakeRecorder{}
	srv := httptest.NewServer(NewRouter(RouterConfig{Source: newSource(), Recorder: rec}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body StateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.Status.Turn)
	assert.Equal(t, "Carbon dividend", body.Framework.Proposals)
	assert.Equal(t, []float64{0, 0.05, 0.1}, body.LeaningHistory)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"GET /state"}, rec.paths)
}

func TestRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "policyswarm_run_turns_total 3\n")
	})
	srv := httptest.NewServer(NewRouter(RouterConfig{Source: newSource(), Metrics: metrics}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "policyswarm_run_turns_total 3")
}

func TestRouter_OptionalRoutes(t *testing.T) {
	srv := httptest.NewServer(NewRouter(RouterConfig{Source: newSource()}))
	defer srv.Close()

	for _, path := range []string{"/metrics", "/ws"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestRouter_WebSocketStream(t *testing.T) {
	hub := NewHub(nil)
	hub.OnTurn(conversation.TurnEvent{Turn: 1, Speaker: "Director"})

	srv := httptest.NewServer(NewRouter(RouterConfig{Source: newSource(), Hub: hub}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() conversation.TurnEvent {
		typ, data, err := conn.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, websocket.MessageText, typ)
		var ev conversation.TurnEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	}

	// 连接时补发最近一次事件
	first := read()
	assert.Equal(t, 1, first.Turn)
	assert.Equal(t, "Director", first.Speaker)

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.OnTurn(conversation.TurnEvent{Turn: 2, Speaker: "Economist"})

	second := read()
	assert.Equal(t, 2, second.Turn)
	assert.Equal(t, "Economist", second.Speaker)
}
