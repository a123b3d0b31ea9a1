package inspector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

type countingSource struct {
	frames atomic.Uint64
}

func (c *countingSource) Snapshot() scene.Snapshot {
	return scene.Snapshot{
		Frames:  c.frames.Add(1),
		Running: true,
		Instances: []scene.InstanceInfo{
			{Name: "b1", Component: "Box", State: "mounted"},
		},
	}
}

func newTestServer(t *testing.T, token string) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(&countingSource{}, scene.InspectorConfig{Interval: time.Hour, Token: token}, log.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap scene.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.EqualValues(t, 1, snap.Frames)
	require.Len(t, snap.Instances, 1)
	assert.Equal(t, "Box", snap.Instances[0].Component)
}

func TestStatsRejectsPost(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp, err := http.Post(ts.URL+"/stats", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTokenRequired(t *testing.T) {
	_, ts := newTestServer(t, "s3cret")

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, wsResp, err := websocket.DefaultDialer.Dial(wsURL(ts, "?token=wrong"), nil)
	require.Error(t, err)
	require.NotNil(t, wsResp)
	assert.Equal(t, http.StatusUnauthorized, wsResp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "?token=s3cret"), nil)
	require.NoError(t, err)
	conn.Close()
}

func TestWebSocketPushesSnapshots(t *testing.T) {
	srv, ts := newTestServer(t, "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), nil)
	require.NoError(t, err)
	defer conn.Close()

	var first scene.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Running)

	require.Eventually(t, func() bool { return srv.clients.len() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, srv.Broadcast())

	var second scene.Snapshot
	require.NoError(t, conn.ReadJSON(&second))
	assert.Greater(t, second.Frames, first.Frames)

	conn.Close()
	require.Eventually(t, func() bool { return srv.clients.len() == 0 }, time.Second, time.Millisecond)
	assert.Zero(t, srv.Broadcast())
}

func TestStartStop(t *testing.T) {
	srv := New(&countingSource{}, scene.InspectorConfig{Addr: "127.0.0.1:0", Interval: 10 * time.Millisecond}, log.Nop())
	require.NoError(t, srv.Start(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), ErrAlreadyRunning)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var snap scene.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	require.NoError(t, conn.ReadJSON(&snap))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.ErrorIs(t, srv.Stop(ctx), ErrNotRunning)
}
