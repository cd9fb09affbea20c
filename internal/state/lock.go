package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/red64llc/red64/pkg/models"
)

// LockTTL is how long an advisory lock token is considered live before
// a new writer may reclaim it. It is a defense-in-depth
// backstop; the facade is responsible for the real serialization
// guarantee
const LockTTL = 5 * time.Minute

// AcquireLock writes a fresh LockToken into the feature directory,
// refusing if an unexpired token already exists, whichever process
// wrote it.
func (s *Store) AcquireLock(feature string) (*models.LockToken, error) {
	dir := s.featureDir(feature)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("state: mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, lockFileName)
	if existing, err := readLock(path); err == nil {
		if time.Since(parseAcquiredAt(existing)) < time.Duration(existing.TTL)*time.Second {
			return nil, fmt.Errorf("state: feature %q already locked by pid %d on %s", feature, existing.PID, existing.Hostname)
		}
	}

	hostname, _ := os.Hostname()
	token := &models.LockToken{
		PID:        os.Getpid(),
		Hostname:   hostname,
		Token:      uuid.NewString(),
		AcquiredAt: time.Now().UTC().Format(time.RFC3339Nano),
		TTL:        int(LockTTL / time.Second),
	}

	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("state: marshal lock token: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("state: write lock: %w", err)
	}
	return token, nil
}

// ReleaseLock removes the lock file for feature if present.
func (s *Store) ReleaseLock(feature string) error {
	path := filepath.Join(s.featureDir(feature), lockFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("state: release lock %s: %w", feature, err)
	}
	return nil
}

func readLock(path string) (*models.LockToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token models.LockToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func parseAcquiredAt(t *models.LockToken) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, t.AcquiredAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}
