package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenecore/internal/core/events/bus"
	"github.com/zeusync/scenecore/internal/core/loop"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/snapshot"
)

func newTestFeed(t *testing.T, cfg Config) (*Server, *scene.Scene, *httptest.Server) {
	t.Helper()
	sc := scene.New(nil)
	_, err := sc.CreateEntity("crate", nil)
	require.NoError(t, err)

	s, err := NewServer(cfg, func(frame uint64) snapshot.Snapshot { return snapshot.Capture(sc, frame) }, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, sc, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	_, err := NewServer(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.EveryFrames = 0
	_, err = NewServer(cfg, func(uint64) snapshot.Snapshot { return snapshot.Snapshot{} }, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSnapshotEndpoint(t *testing.T) {
	s, _, ts := newTestFeed(t, DefaultConfig())

	resp, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	s.OnFrame(loop.FrameStats{Frame: 12, SimTime: 0.2})

	resp, err = http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, "frame", msg.Type)
	assert.Equal(t, uint64(12), msg.Frame)
	require.NotNil(t, msg.Scene)
	require.Len(t, msg.Scene.Entities, 1)
	assert.Equal(t, "crate", msg.Scene.Entities[0].Name)
}

func TestFramesOnlyEveryN(t *testing.T) {
	s, _, _ := newTestFeed(t, DefaultConfig())
	for f := uint64(0); f < 13; f++ {
		s.OnFrame(loop.FrameStats{Frame: f})
	}
	st := s.Stats()
	assert.Equal(t, uint64(3), st.Published)
	assert.Equal(t, uint64(12), st.LastFrame)
}

func TestWebSocketFeed(t *testing.T) {
	s, sc, ts := newTestFeed(t, DefaultConfig())
	s.OnFrame(loop.FrameStats{Frame: 0})

	conn := dial(t, ts)

	first := readMessage(t, conn)
	assert.Equal(t, uint64(0), first.Frame)

	require.Eventually(t, func() bool { return s.Stats().ClientCount == 1 }, time.Second, 10*time.Millisecond)

	_, err := sc.CreateEntity("ball", nil)
	require.NoError(t, err)
	s.OnFrame(loop.FrameStats{Frame: 6})

	next := readMessage(t, conn)
	assert.Equal(t, uint64(6), next.Frame)
	require.NotNil(t, next.Scene)
	assert.Len(t, next.Scene.Entities, 2)

	e, _ := sc.FindByName("ball")
	require.NoError(t, s.OnEvent(bus.Event{Type: bus.EntityDestroyed, Frame: 7, Entity: e.ID(), EntityName: "ball"}))
	ev := readMessage(t, conn)
	assert.Equal(t, "event", ev.Type)
	require.NotNil(t, ev.Event)
	assert.Equal(t, "entity.destroyed", ev.Event.Type)
	assert.Equal(t, e.ID().String(), ev.Event.Entity)
	assert.Empty(t, ev.Event.Other)
}

func TestMaxClients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxClients = 1
	s, _, ts := newTestFeed(t, cfg)

	dial(t, ts)
	require.Eventually(t, func() bool { return s.Stats().ClientCount == 1 }, time.Second, 10*time.Millisecond)

	second := dial(t, ts)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater))
}

func TestStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	s, err := NewServer(cfg, func(uint64) snapshot.Snapshot { return snapshot.Snapshot{} }, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(t.Context()))
	assert.ErrorIs(t, s.Start(t.Context()), ErrServerAlreadyRunning)
	require.NotNil(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr().String() + "/stats")
	require.NoError(t, err)
	var st Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	assert.True(t, st.Running)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Stop(t.Context()), ErrServerNotRunning)
	assert.ErrorIs(t, s.Start(t.Context()), ErrServerClosed)
}

func TestHubQueuesInitialBeforeBroadcasts(t *testing.T) {
	h := newHub(nil)
	c := &client{id: "viewer", send: make(chan []byte, 2)}
	require.True(t, h.add(c, 0, []byte("latest")))
	h.broadcast([]byte("next"))

	assert.Equal(t, "latest", string(<-c.send))
	assert.Equal(t, "next", string(<-c.send))

	full := &client{id: "full", send: make(chan []byte, 1)}
	full.send <- []byte("queued")
	require.True(t, h.add(full, 0, []byte("latest")))
	assert.Equal(t, uint64(1), h.dropped.Load())
}

func TestHubAddRacesRemove(t *testing.T) {
	h := newHub(nil)
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &client{id: strconv.Itoa(i), send: make(chan []byte, 1)}
			if h.add(c, 0, []byte("latest")) {
				h.remove(c)
			}
		}()
	}
	for range 32 {
		h.broadcast([]byte("frame"))
	}
	wg.Wait()
	assert.Zero(t, h.count.Load())
}
