// Package inspector serves live scene statistics over HTTP and websocket.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

// Source produces the snapshots the inspector serves.
type Source interface {
	Snapshot() scene.Snapshot
}

type Server struct {
	source Source
	config scene.InspectorConfig
	auth   tokenAuth
	logger log.Log

	server   *http.Server
	listener net.Listener
	running  atomic.Bool

	clients *clientSet

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

func New(source Source, cfg scene.InspectorConfig, logger log.Log) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if logger == nil {
		logger = log.Provide()
	}
	return &Server{
		source:  source,
		config:  cfg,
		auth:    tokenAuth{token: cfg.Token},
		logger:  logger.Named("inspector"),
		clients: newClientSet(),
	}
}

// Handler exposes the inspector routes without binding a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start binds the configured address and begins serving and pushing
// snapshots to websocket clients.
func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.config.Addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.stopChan = make(chan struct{})

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("inspector server failed", log.Error(err))
		}
	}()
	go func() {
		defer s.workerGroup.Done()
		s.pushLoop()
	}()

	s.logger.Info("inspector listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	close(s.stopChan)
	s.clients.closeAll()
	err := s.server.Shutdown(ctx)
	s.workerGroup.Wait()
	s.logger.Info("inspector stopped")
	return err
}

func (s *Server) pushLoop() {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Broadcast()
		case <-s.stopChan:
			return
		}
	}
}

// Broadcast pushes a fresh snapshot to every websocket client and returns
// how many received it.
func (s *Server) Broadcast() int {
	if s.clients.len() == 0 {
		return 0
	}
	return s.clients.broadcast(s.source.Snapshot(), s.logger)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err := s.auth.authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	buf := bufferPool.Get()
	defer bufferPool.Put(buf)
	if err := json.NewEncoder(buf).Encode(s.source.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("write stats failed", log.Error(err))
	}
}
