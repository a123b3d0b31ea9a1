package scheduler

import (
	"sync"
	"time"
)

// FrameSource delivers one callback per requested frame. The returned
// cancel func drops a pending request; calling it after the callback ran
// is harmless.
type FrameSource interface {
	RequestFrame(cb func(now time.Time)) (cancel func())
}

// TickerSource paces frames on a fixed interval.
type TickerSource struct {
	interval time.Duration
}

// NewTickerSource fires frames every 1/fps seconds. fps <= 0 means 60.
func NewTickerSource(fps int) *TickerSource {
	if fps <= 0 {
		fps = DefaultConfig().FPS
	}
	return &TickerSource{interval: time.Second / time.Duration(fps)}
}

func (s *TickerSource) Interval() time.Duration { return s.interval }

func (s *TickerSource) RequestFrame(cb func(now time.Time)) func() {
	t := time.AfterFunc(s.interval, func() { cb(time.Now()) })
	return func() { t.Stop() }
}

// ManualSource holds at most one pending frame until Fire is called.
type ManualSource struct {
	mu      sync.Mutex
	seq     uint64
	pending func(time.Time)
}

func NewManualSource() *ManualSource {
	return &ManualSource{}
}

func (s *ManualSource) RequestFrame(cb func(now time.Time)) func() {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.pending = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.seq == id {
			s.pending = nil
		}
		s.mu.Unlock()
	}
}

// Pending reports whether a frame has been requested and not yet fired.
func (s *ManualSource) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Fire runs the pending frame callback, if any, and reports whether one ran.
func (s *ManualSource) Fire(now time.Time) bool {
	s.mu.Lock()
	cb := s.pending
	s.pending = nil
	s.mu.Unlock()

	if cb == nil {
		return false
	}
	cb(now)
	return true
}
