package service

import (
	"sync/atomic"
	"time"

	"stock_bot/internal/models"
)

// State is written by the runner loop and the fill stream, read by the HTTP probes.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	streamConnected atomic.Bool
	lastCycleUnix   atomic.Int64 // unix seconds
	lastFillUnix    atomic.Int64
	cycles          atomic.Int64
	openPositions   atomic.Int64
	lastError       atomic.Value // string
	positions       atomic.Value // []models.Position
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	s.lastError.Store("")
	s.positions.Store([]models.Position(nil))
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetStreamConnected(v bool) { s.streamConnected.Store(v) }
func (s *State) StreamConnected() bool     { return s.streamConnected.Load() }

// CycleDone records a finished cycle; err == nil clears the last error.
func (s *State) CycleDone(t time.Time, openPositions int, err error) {
	s.lastCycleUnix.Store(t.Unix())
	s.cycles.Add(1)
	s.openPositions.Store(int64(openPositions))
	if err != nil {
		s.lastError.Store(err.Error())
		return
	}
	s.lastError.Store("")
}

// SetPositions publishes a copy of the position book for readers outside the runner.
func (s *State) SetPositions(p []models.Position) {
	s.positions.Store(append([]models.Position(nil), p...))
}

func (s *State) Positions() []models.Position { return s.positions.Load().([]models.Position) }

func (s *State) TouchFill(t time.Time) { s.lastFillUnix.Store(t.Unix()) }

func (s *State) LastCycle() time.Time { return unixOrZero(s.lastCycleUnix.Load()) }
func (s *State) LastFill() time.Time  { return unixOrZero(s.lastFillUnix.Load()) }
func (s *State) Cycles() int64        { return s.cycles.Load() }
func (s *State) OpenPositions() int64 { return s.openPositions.Load() }
func (s *State) LastError() string    { return s.lastError.Load().(string) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func unixOrZero(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
