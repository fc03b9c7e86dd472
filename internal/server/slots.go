package server

import (
	"errors"
	"net"
	"sync"

	"github.com/lawnchairsociety/gridclash/internal/config"
)

var (
	errServerFull   = errors.New("replay capacity reached")
	errIPFull       = errors.New("too many replays from this address")
	errBattleFull   = errors.New("too many viewers on this battle")
	errSlotReleased = errors.New("replay slot already released")
)

// ReplaySlots counts open replay sockets by client address and by battle.
// Zero limits are unlimited.
type ReplaySlots struct {
	mu        sync.Mutex
	byIP      map[string]int
	byBattle  map[string]int
	open      int
	perIP     int
	perBattle int
	total     int
}

// SlotStats is a snapshot of open replays.
type SlotStats struct {
	Open    int `json:"open"`
	Clients int `json:"clients"`
	Battles int `json:"battles"`
}

// NewReplaySlots returns a tracker enforcing cfg.
func NewReplaySlots(cfg config.ConnectionsConfig) *ReplaySlots {
	return &ReplaySlots{
		byIP:      make(map[string]int),
		byBattle:  make(map[string]int),
		perIP:     cfg.MaxPerIP,
		perBattle: cfg.MaxPerBattle,
		total:     cfg.MaxTotal,
	}
}

// Acquire reserves a slot for ip watching battleID. The returned release func
// frees it and is safe to call more than once.
func (s *ReplaySlots) Acquire(ip, battleID string) (release func() error, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.total > 0 && s.open >= s.total:
		return nil, errServerFull
	case s.perIP > 0 && s.byIP[ip] >= s.perIP:
		return nil, errIPFull
	case s.perBattle > 0 && s.byBattle[battleID] >= s.perBattle:
		return nil, errBattleFull
	}

	s.byIP[ip]++
	s.byBattle[battleID]++
	s.open++

	var once sync.Once
	return func() error {
		err := errSlotReleased
		once.Do(func() {
			s.release(ip, battleID)
			err = nil
		})
		return err
	}, nil
}

func (s *ReplaySlots) release(ip, battleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decrement(s.byIP, ip)
	decrement(s.byBattle, battleID)
	s.open--
}

func decrement(m map[string]int, key string) {
	if m[key] <= 1 {
		delete(m, key)
		return
	}
	m[key]--
}

// Stats returns the current counts.
func (s *ReplaySlots) Stats() SlotStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SlotStats{Open: s.open, Clients: len(s.byIP), Battles: len(s.byBattle)}
}

// Viewers returns the open replay count for battleID.
func (s *ReplaySlots) Viewers(battleID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byBattle[battleID]
}

// hostOnly strips the port from a host:port remote address.
func hostOnly(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
