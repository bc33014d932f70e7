// Package server exposes a running simulation over a read-only websocket feed and a
// JSON snapshot endpoint. Every payload is encoded on the simulation goroutine;
// HTTP handlers only ever see immutable bytes.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/scenecore/internal/core/events/bus"
	"github.com/zeusync/scenecore/internal/core/loop"
	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/snapshot"
	"github.com/zeusync/scenecore/pkg/generic"
)

// buffers holds encode scratch. Frame and event encodes both run on the
// simulation goroutine, so two warm buffers cover the steady state.
var buffers = generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset, 2)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Config holds server configuration
type Config struct {
	ListenAddr   string
	MaxClients   int
	EveryFrames  int // publish a frame every N loop frames
	SendBuffer   int // per-viewer queued messages
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8090",
		MaxClients:   64,
		EveryFrames:  6,
		SendBuffer:   16,
		WriteTimeout: 5 * time.Second,
	}
}

// Capturer produces the scene state for a frame. It is called on the simulation
// goroutine only.
type Capturer func(frame uint64) snapshot.Snapshot

// Message is the envelope of everything sent to viewers.
type Message struct {
	Type  string             `json:"type"`
	Frame uint64             `json:"frame"`
	Time  float64            `json:"sim_time,omitempty"`
	Scene *snapshot.Snapshot `json:"scene,omitempty"`
	Event *EventPayload      `json:"event,omitempty"`
}

// EventPayload is the wire form of a bus event.
type EventPayload struct {
	Type   string `json:"type"`
	Entity string `json:"entity,omitempty"`
	Name   string `json:"name,omitempty"`
	Other  string `json:"other,omitempty"`
	OName  string `json:"other_name,omitempty"`
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64  `json:"clients"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	LastFrame   uint64 `json:"last_frame"`
	Running     bool   `json:"running"`
}

// Server is the read-only frame feed.
type Server struct {
	config  Config
	capture Capturer
	hub     *hub
	logger  log.Log

	http     *http.Server
	listener net.Listener

	latest    atomic.Pointer[[]byte]
	lastFrame atomic.Uint64
	published atomic.Uint64

	running atomic.Bool
	closed  atomic.Bool
}

var _ loop.Observer = (*Server)(nil)

// NewServer creates a feed server reading scene state through capture.
func NewServer(config Config, capture Capturer, logger log.Log) (*Server, error) {
	if capture == nil || config.EveryFrames <= 0 || config.SendBuffer <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	logger = log.OrNop(logger).With(log.String("component", "feed"))
	s := &Server{
		config:  config,
		capture: capture,
		hub:     newHub(logger),
		logger:  logger,
	}
	s.logger.Info("Feed created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients))
	return s, nil
}

// Handler returns the HTTP routes: /ws, /snapshot and /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("listening on %s: %w", s.config.ListenAddr, err)
	}
	s.listener = ln
	s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Feed server stopped unexpectedly", log.Error(err))
		}
	}()

	s.logger.Info("Feed listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop disconnects every viewer and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping feed")
	s.hub.closeAll()
	return s.http.Shutdown(ctx)
}

// Close stops the server if needed and refuses further starts.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.running.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// OnFrame captures and publishes the scene every EveryFrames frames.
func (s *Server) OnFrame(stats loop.FrameStats) {
	if stats.Frame%uint64(s.config.EveryFrames) != 0 {
		return
	}
	snap := s.capture(stats.Frame)
	msg, err := encode(Message{Type: "frame", Frame: stats.Frame, Time: stats.SimTime, Scene: &snap})
	if err != nil {
		s.logger.Error("Failed to encode frame", log.Uint64("frame", stats.Frame), log.Error(err))
		return
	}
	s.latest.Store(&msg)
	s.lastFrame.Store(stats.Frame)
	s.published.Add(1)
	s.hub.broadcast(msg)
}

// OnEvent forwards a bus event to viewers. It satisfies bus.Handler.
func (s *Server) OnEvent(ev bus.Event) error {
	p := &EventPayload{Type: string(ev.Type), Name: ev.EntityName, OName: ev.OtherName}
	if ev.Entity != uuid.Nil {
		p.Entity = ev.Entity.String()
	}
	if ev.Other != uuid.Nil {
		p.Other = ev.Other.String()
	}
	msg, err := encode(Message{Type: "event", Frame: ev.Frame, Event: p})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	s.hub.broadcast(msg)
	return nil
}

// encode returns an owned copy of m's JSON; the scratch buffer goes back to the pool.
func encode(m Message) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Stats returns server statistics
func (s *Server) Stats() Stats {
	return Stats{
		ClientCount: s.hub.count.Load(),
		Published:   s.published.Load(),
		Dropped:     s.hub.dropped.Load(),
		LastFrame:   s.lastFrame.Load(),
		Running:     s.running.Load(),
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", log.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, s.config.SendBuffer)}
	// Late joiners get the latest frame straight away.
	var initial []byte
	if latest := s.latest.Load(); latest != nil {
		initial = *latest
	}
	if !s.hub.add(c, s.config.MaxClients, initial) {
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", conn.RemoteAddr().String()))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, ErrMaxClientsReached.Error()),
			time.Now().Add(s.config.WriteTimeout))
		_ = conn.Close()
		return
	}

	clientLogger := s.logger.With(log.String("client_id", c.id))
	clientLogger.Info("Viewer connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", s.hub.count.Load()))

	go c.writePump(s.config.WriteTimeout)
	c.readPump()
	s.hub.remove(c)

	clientLogger.Info("Viewer disconnected", log.Int64("total_clients", s.hub.count.Load()))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	latest := s.latest.Load()
	if latest == nil {
		http.Error(w, ErrNoFrame.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(*latest)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
		s.logger.Error("Failed to encode stats", log.Error(err))
	}
}
