package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lawnchairsociety/gridclash/internal/config"
)

func mustAcquire(t *testing.T, s *ReplaySlots, ip, battle string) func() error {
	t.Helper()
	release, err := s.Acquire(ip, battle)
	if err != nil {
		t.Fatalf("Acquire(%s, %s) error = %v", ip, battle, err)
	}
	return release
}

func TestReplaySlots_Limits(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ConnectionsConfig
		held    [][2]string
		ip      string
		battle  string
		wantErr error
	}{
		{
			name: "per ip",
			cfg:  config.ConnectionsConfig{MaxPerIP: 2},
			held: [][2]string{{"10.0.0.1", "b1"}, {"10.0.0.1", "b2"}},
			ip:   "10.0.0.1", battle: "b3",
			wantErr: errIPFull,
		},
		{
			name: "other ip unaffected",
			cfg:  config.ConnectionsConfig{MaxPerIP: 2},
			held: [][2]string{{"10.0.0.1", "b1"}, {"10.0.0.1", "b2"}},
			ip:   "10.0.0.2", battle: "b1",
		},
		{
			name: "per battle",
			cfg:  config.ConnectionsConfig{MaxPerBattle: 2},
			held: [][2]string{{"10.0.0.1", "b1"}, {"10.0.0.2", "b1"}},
			ip:   "10.0.0.3", battle: "b1",
			wantErr: errBattleFull,
		},
		{
			name: "total checked first",
			cfg:  config.ConnectionsConfig{MaxTotal: 2, MaxPerIP: 1},
			held: [][2]string{{"10.0.0.1", "b1"}, {"10.0.0.2", "b2"}},
			ip:   "10.0.0.1", battle: "b1",
			wantErr: errServerFull,
		},
		{
			name: "unlimited",
			cfg:  config.ConnectionsConfig{},
			held: [][2]string{{"10.0.0.1", "b1"}, {"10.0.0.1", "b1"}, {"10.0.0.1", "b1"}},
			ip:   "10.0.0.1", battle: "b1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewReplaySlots(tt.cfg)
			for _, h := range tt.held {
				mustAcquire(t, s, h[0], h[1])
			}
			_, err := s.Acquire(tt.ip, tt.battle)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Acquire() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReplaySlots_Release(t *testing.T) {
	s := NewReplaySlots(config.ConnectionsConfig{MaxPerIP: 1, MaxPerBattle: 1})

	release := mustAcquire(t, s, "a", "b1")
	mustAcquire(t, s, "b", "b2")
	if got := s.Viewers("b1"); got != 1 {
		t.Errorf("Viewers(b1) = %d, want 1", got)
	}
	if got := s.Stats(); got != (SlotStats{Open: 2, Clients: 2, Battles: 2}) {
		t.Errorf("Stats() = %+v", got)
	}

	if err := release(); err != nil {
		t.Errorf("release() error = %v", err)
	}
	if err := release(); !errors.Is(err, errSlotReleased) {
		t.Errorf("second release() error = %v, want errSlotReleased", err)
	}
	if got := s.Stats(); got != (SlotStats{Open: 1, Clients: 1, Battles: 1}) {
		t.Errorf("Stats() after release = %+v", got)
	}
	if got := s.Viewers("b1"); got != 0 {
		t.Errorf("Viewers(b1) after release = %d, want 0", got)
	}

	mustAcquire(t, s, "a", "b1")
}

func TestHostOnly(t *testing.T) {
	tests := map[string]string{
		"192.168.1.1:12345": "192.168.1.1",
		"[::1]:8080":        "::1",
		"no-port":           "no-port",
	}
	for in, want := range tests {
		if got := hostOnly(in); got != want {
			t.Errorf("hostOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.1.1.1:5000", nil, "10.1.1.1"},
		{"forwarded for", "10.1.1.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"real ip", "10.1.1.1:5000", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "198.51.100.7"},
		{"forwarded wins", "10.1.1.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.7"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getRealIP(r); got != tt.want {
				t.Errorf("getRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
