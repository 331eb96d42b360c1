// Package consentstore provides file-based persistence for consent
// grants. Writes replace the whole file atomically (temp file + rename) so
// a concurrent reader always sees either the old or the new store, never a
// torn write.
package consentstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// DefaultExpiryDays bounds allow-always and deny grants.
const DefaultExpiryDays = 30

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path       string
	expiryDays int
	dirPerm    os.FileMode
	filePerm   os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:       filepath.Join(os.Getenv("HOME"), ".desktop_assistant", "consents.yaml"),
		expiryDays: DefaultExpiryDays,
		dirPerm:    0o755,
		filePerm:   0o600, // User-only read/write (secure default)
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the consents file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.path = path
	}
}

// WithExpiryDays sets how long allow-always and deny grants stay valid.
func WithExpiryDays(days int) FileStoreOption {
	return func(c *fileStoreConfig) {
		if days > 0 {
			c.expiryDays = days
		}
	}
}

// WithFilePermissions sets the file permissions for the consents file.
// Default is 0o600 (user-only). Use with caution.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions for the store directory.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore is the ConsentStore implementation. Persisted grants live in a
// YAML map keyed by subject; allow-once grants live only in memory and are
// invalidated on their first lookup.
type FileStore struct {
	config fileStoreConfig

	mu   sync.Mutex
	once map[entities.SubjectKey]entities.ConsentGrant
}

var _ ports.ConsentStore = (*FileStore)(nil)

// New creates a FileStore with the given options.
func New(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{
		config: cfg,
		once:   make(map[entities.SubjectKey]entities.ConsentGrant),
	}
}

// Path returns the location of the backing store (for user messaging).
func (s *FileStore) Path() string {
	return s.config.path
}

// Lookup returns the grant for key, evicting expired grants and consuming
// allow-once grants.
func (s *FileStore) Lookup(key entities.SubjectKey, now time.Time) (entities.ConsentGrant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.once[key]; ok {
		delete(s.once, key)
		if g.Expired(now) {
			return entities.ConsentGrant{}, false, nil
		}
		return g, true, nil
	}

	grants, err := s.loadLocked()
	if err != nil {
		return entities.ConsentGrant{}, false, err
	}
	g, ok := grants[string(key)]
	if !ok {
		return entities.ConsentGrant{}, false, nil
	}
	if g.Expired(now) {
		delete(grants, string(key))
		if err := s.saveLocked(grants); err != nil {
			return entities.ConsentGrant{}, false, err
		}
		return entities.ConsentGrant{}, false, nil
	}
	return g, true, nil
}

// Record persists a decision for key. Allow-once stays in memory only.
func (s *FileStore) Record(key entities.SubjectKey, decision entities.ConsentDecision, now time.Time) (entities.ConsentGrant, error) {
	grant := entities.ConsentGrant{
		ID:        uuid.NewString(),
		Subject:   key,
		Decision:  decision,
		CreatedAt: now.UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if decision == entities.ConsentAllowOnce {
		s.once[key] = grant
		return grant, nil
	}

	grant.ExpiresAt = now.UTC().Add(time.Duration(s.config.expiryDays) * 24 * time.Hour)

	grants, err := s.loadLocked()
	if err != nil {
		return entities.ConsentGrant{}, err
	}
	grants[string(key)] = grant
	if err := s.saveLocked(grants); err != nil {
		return entities.ConsentGrant{}, err
	}
	return grant, nil
}

// Revoke removes any grant for key.
func (s *FileStore) Revoke(key entities.SubjectKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.once, key)

	grants, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := grants[string(key)]; !ok {
		return nil
	}
	delete(grants, string(key))
	return s.saveLocked(grants)
}

// Clear removes all grants.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.once = make(map[entities.SubjectKey]entities.ConsentGrant)
	return s.saveLocked(map[string]entities.ConsentGrant{})
}

func (s *FileStore) loadLocked() (map[string]entities.ConsentGrant, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return map[string]entities.ConsentGrant{}, nil
	}
	if err != nil {
		return nil, &errors.ConsentStoreError{Op: "load", Err: err}
	}

	grants := map[string]entities.ConsentGrant{}
	if err := yaml.Unmarshal(data, &grants); err != nil {
		return nil, &errors.ConsentStoreError{Op: "load", Err: fmt.Errorf("parse %s: %w", s.config.path, err)}
	}
	return grants, nil
}

// saveLocked writes the full store atomically.
func (s *FileStore) saveLocked(grants map[string]entities.ConsentGrant) error {
	data, err := yaml.Marshal(grants)
	if err != nil {
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".consents-*.yaml")
	if err != nil {
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}
	if err := tmp.Chmod(s.config.filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, s.config.path); err != nil {
		os.Remove(tmpName)
		return &errors.ConsentStoreError{Op: "save", Err: err}
	}
	return nil
}
