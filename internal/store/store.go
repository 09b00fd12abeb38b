// Package store provides a BoltDB-backed history of beacon reports, keyed
// by beacon ID for deduplication.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"pocbeacon/internal/report"
)

var reportsBucket = []byte("reports")

// ReportRecord is one beacon's report history. Count tracks repeated
// sightings of the same beacon ID.
type ReportRecord struct {
	BeaconID  string        `json:"beacon_id"`
	Report    report.Report `json:"report"`
	Source    string        `json:"source,omitempty"`
	FirstSeen time.Time     `json:"first_seen"`
	LastSeen  time.Time     `json:"last_seen"`
	Count     uint64        `json:"count"`
}

// Store wraps a bbolt database for report records.
type Store struct {
	db  *bolt.DB
	mu  sync.RWMutex
	log zerolog.Logger
}

// New opens or creates a BoltDB file at the given path.
func New(path string, log zerolog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reports bucket: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying BoltDB.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a report keyed by its beacon ID. It returns true when the
// beacon was seen for the first time; repeated sightings bump the count.
func (s *Store) Save(r report.Report, source string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		id := r.BeaconID()
		key := []byte(id)

		now := time.Now()
		var record ReportRecord

		existing := b.Get(key)
		if existing != nil {
			if err := json.Unmarshal(existing, &record); err != nil {
				s.log.Warn().Err(err).Str("beacon_id", id).Msg("Failed to unmarshal existing record, overwriting")
			}
			record.LastSeen = now
			record.Count++

			s.log.Debug().
				Str("beacon_id", id).
				Uint64("count", record.Count).
				Msg("Duplicate beacon sighting")
		} else {
			first = true
			record = ReportRecord{
				BeaconID:  id,
				Report:    r,
				Source:    source,
				FirstSeen: now,
				LastSeen:  now,
				Count:     1,
			}

			s.log.Info().
				Str("beacon_id", id).
				Uint64("frequency", r.Frequency).
				Int32("datarate", r.DataRate).
				Str("source", source).
				Msg("Beacon report recorded")
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling report record: %w", err)
		}

		return b.Put(key, data)
	})
	return first, err
}

// Seen reports whether a beacon ID has already been recorded.
func (s *Store) Seen(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(reportsBucket).Get([]byte(id)) != nil
		return nil
	})
	return seen, err
}

// Get returns the record for a beacon ID, or nil if unknown.
func (s *Store) Get(id string) (*ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record *ReportRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(reportsBucket).Get([]byte(id))
		if data == nil {
			return nil
		}
		record = &ReportRecord{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("unmarshaling record %s: %w", id, err)
		}
		return nil
	})
	return record, err
}

// All returns every report record.
func (s *Store) All() ([]ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []ReportRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)
		return b.ForEach(func(k, v []byte) error {
			var record ReportRecord
			if err := json.Unmarshal(v, &record); err != nil {
				s.log.Warn().Err(err).Str("key", string(k)).Msg("Skipping corrupt record")
				return nil
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// RunExpiry starts a background goroutine that prunes records whose last
// sighting exceeds the given age. Runs at the given check interval.
func (s *Store) RunExpiry(checkInterval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for range ticker.C {
			s.pruneAgedRecords(maxAge)
		}
	}()
}

func (s *Store) pruneAgedRecords(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(reportsBucket)

		var aged [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var record ReportRecord
			if err := json.Unmarshal(v, &record); err != nil {
				aged = append(aged, append([]byte(nil), k...))
				return nil
			}
			if record.LastSeen.Before(cutoff) {
				aged = append(aged, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range aged {
			s.log.Info().Str("beacon_id", string(k)).Msg("Pruning aged report record")
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Database error during expiry check")
	}
}
