package timesync

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
)

const (
	// DefaultNTPServer is queried when no server is configured.
	DefaultNTPServer = "pool.ntp.org"
	// DefaultSyncInterval is the default cadence of background syncs.
	DefaultSyncInterval = time.Hour

	stopGracePeriod = 2 * time.Second
)

// Service keeps a best-effort offset between the local clock and an NTP
// reference. The offset lives in a single atomic value, so Now never
// blocks on a sync in progress and never observes a torn update.
type Service struct {
	server   string
	interval time.Duration
	offsetNS atomic.Int64

	// query is swapped out in tests.
	query func(server string) (time.Duration, error)

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewService creates a time sync service for the given NTP server.
func NewService(server string, interval time.Duration) *Service {
	if server == "" {
		server = DefaultNTPServer
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Service{server: server, interval: interval, query: queryNTP}
}

func queryNTP(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Start launches the background sync loop. Calling Start on a running
// service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.syncLoop(s.stopCh, s.doneCh)
	log.Printf("TIMESYNC: Started, syncing against %s every %s", s.server, s.interval)
}

// Stop terminates the sync loop and waits for it to exit, bounded by a
// short grace period.
func (s *Service) Stop() {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	select {
	case <-doneCh:
		log.Println("TIMESYNC: Stopped")
	case <-time.After(stopGracePeriod):
		log.Println("TIMESYNC: Timed out waiting for sync loop to stop")
	}
}

// Now returns the current synchronized time in UTC. It never blocks and
// never fails; if no sync has ever succeeded it degrades to the local
// clock.
func (s *Service) Now() time.Time {
	return time.Now().UTC().Add(s.Offset())
}

// Offset returns the last successfully computed clock offset.
func (s *Service) Offset() time.Duration {
	return time.Duration(s.offsetNS.Load())
}

func (s *Service) syncLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	s.SyncOnce()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.SyncOnce()
		}
	}
}

// SyncOnce queries the NTP server once. Any failure is logged as a
// warning and leaves the previously computed offset in effect.
func (s *Service) SyncOnce() {
	offset, err := s.query(s.server)
	if err != nil {
		log.Printf("TIMESYNC: Failed to sync time via NTP: %v", err)
		return
	}
	s.offsetNS.Store(int64(offset))
	log.Printf("TIMESYNC: Time synchronized via NTP (offset=%s)", offset)
}
