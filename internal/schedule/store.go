package schedule

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"airbridge/internal/models"
)

// DefaultStoragePath is used when no storage location is configured.
const DefaultStoragePath = "schedules.json"

// Manager owns the schedule collection and its backing file. All reads and
// mutations go through the Manager's lock, so no two saves are ever in
// flight against the same path.
type Manager struct {
	mu          sync.Mutex
	storagePath string
	tzOffset    time.Duration
	schedules   []*models.Schedule
}

// NewManager loads any persisted schedules from storagePath. A missing or
// malformed file yields an empty collection, never a startup failure.
func NewManager(storagePath string, timezoneOffsetMinutes int) *Manager {
	if storagePath == "" {
		storagePath = DefaultStoragePath
	}
	m := &Manager{
		storagePath: storagePath,
		tzOffset:    time.Duration(timezoneOffsetMinutes) * time.Minute,
	}
	m.load()
	return m
}

// List returns a snapshot of all schedules, including disabled ones, in
// storage order.
func (m *Manager) List() []models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, *s)
	}
	return out
}

// Upsert fills defaults on the given schedule, replaces any existing
// schedule with the same id or appends a new one, persists the collection
// and returns the materialized schedule.
func (m *Manager) Upsert(in models.Schedule) models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := in
	applyDefaults(&s)

	replaced := false
	for i, existing := range m.schedules {
		if existing.ID == s.ID {
			m.schedules[i] = &s
			replaced = true
			break
		}
	}
	if !replaced {
		m.schedules = append(m.schedules, &s)
	}
	m.save()
	return s
}

// Delete removes the schedule with the given id and reports whether
// anything was removed. Storage is only rewritten on an actual removal.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.schedules {
		if s.ID == id {
			m.schedules = append(m.schedules[:i], m.schedules[i+1:]...)
			m.save()
			return true
		}
	}
	return false
}

func applyDefaults(s *models.Schedule) {
	if s.ID == "" {
		s.ID = "schedule_" + randomSuffix()
	}
	if s.Enabled == nil {
		enabled := true
		s.Enabled = &enabled
	}
	if s.FanSpeed == nil {
		fanSpeed := 3
		s.FanSpeed = &fanSpeed
	}
	if s.Mode == "" {
		s.Mode = "cool"
	}
	if s.Temperature == nil {
		temperature := 23
		s.Temperature = &temperature
	}
	if s.Topic == "" {
		s.Topic = "aircon/control"
	}
	if s.Repeat == nil {
		s.Repeat = &models.Repeat{Type: "daily"}
	} else if s.Repeat.Type == "" {
		s.Repeat.Type = "daily"
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means something is very wrong with the host;
		// fall back to a time-derived suffix rather than crash.
		return hex.EncodeToString([]byte(time.Now().Format("040505")))[:8]
	}
	return hex.EncodeToString(buf)
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.storagePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("SCHEDULE: Failed to read %s: %v", m.storagePath, err)
		}
		m.schedules = []*models.Schedule{}
		return
	}

	var schedules []*models.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		log.Printf("SCHEDULE: Malformed schedule file %s, starting with empty set: %v", m.storagePath, err)
		m.schedules = []*models.Schedule{}
		return
	}
	if schedules == nil {
		schedules = []*models.Schedule{}
	}
	m.schedules = schedules
}

// save serializes the whole collection and atomically replaces the storage
// file via a temp file and rename, so readers never observe a torn write.
// Persistence failures are logged and swallowed; the in-memory state stays
// authoritative for the rest of the process lifetime.
// Callers must hold m.mu.
func (m *Manager) save() {
	data, err := json.MarshalIndent(m.schedules, "", "  ")
	if err != nil {
		log.Printf("SCHEDULE: Failed to serialize schedules: %v", err)
		return
	}

	dir := filepath.Dir(m.storagePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(m.storagePath)+".tmp-*")
	if err != nil {
		log.Printf("SCHEDULE: Failed to create temp file in %s: %v", dir, err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Printf("SCHEDULE: Failed to write schedules: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		log.Printf("SCHEDULE: Failed to close temp file: %v", err)
		return
	}
	if err := os.Rename(tmpName, m.storagePath); err != nil {
		os.Remove(tmpName)
		log.Printf("SCHEDULE: Failed to replace %s: %v", m.storagePath, err)
	}
}
