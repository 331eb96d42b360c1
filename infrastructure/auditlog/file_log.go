// Package auditlog provides the append-only audit trail as a JSONL file.
// Records are serialized one per line with O_APPEND writes so concurrent
// front ends sharing the state directory never interleave partial records.
package auditlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// DefaultMaxRecords is how many records Trim keeps.
const DefaultMaxRecords = 1000

// fileLogConfig holds configuration for the FileLog.
type fileLogConfig struct {
	path       string
	maxRecords int
	dirPerm    os.FileMode
	filePerm   os.FileMode
}

func defaultFileLogConfig() fileLogConfig {
	return fileLogConfig{
		path:       filepath.Join(os.Getenv("HOME"), ".desktop_assistant", "audit.jsonl"),
		maxRecords: DefaultMaxRecords,
		dirPerm:    0o755,
		filePerm:   0o600,
	}
}

// FileLogOption configures a FileLog instance.
type FileLogOption func(*fileLogConfig)

// WithPath sets the audit log file location.
func WithPath(path string) FileLogOption {
	return func(c *fileLogConfig) {
		c.path = path
	}
}

// WithMaxRecords sets how many records Trim retains.
func WithMaxRecords(n int) FileLogOption {
	return func(c *fileLogConfig) {
		if n > 0 {
			c.maxRecords = n
		}
	}
}

// WithFilePermissions sets the log file permissions.
func WithFilePermissions(perm os.FileMode) FileLogOption {
	return func(c *fileLogConfig) {
		c.filePerm = perm
	}
}

// FileLog is the AuditLog implementation.
type FileLog struct {
	config fileLogConfig
	mu     sync.Mutex
}

var _ ports.AuditLog = (*FileLog)(nil)

// New creates a FileLog with the given options.
func New(opts ...FileLogOption) *FileLog {
	cfg := defaultFileLogConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileLog{config: cfg}
}

// Path returns the log file location.
func (l *FileLog) Path() string {
	return l.config.path
}

// Append writes one record. Failures are *errors.AuditWriteError; callers
// report them but never reverse an already-committed decision.
func (l *FileLog) Append(rec entities.AuditRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return &errors.AuditWriteError{Err: err}
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.config.path), l.config.dirPerm); err != nil {
		return &errors.AuditWriteError{Err: err}
	}
	f, err := os.OpenFile(l.config.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, l.config.filePerm)
	if err != nil {
		return &errors.AuditWriteError{Err: err}
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return &errors.AuditWriteError{Err: err}
	}
	return nil
}

// Read returns all records currently in the log, oldest first. Unparseable
// lines are skipped so a log written by a newer version stays readable.
func (l *FileLog) Read() ([]entities.AuditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.config.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []entities.AuditRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec entities.AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Trim keeps only the most recent maxRecords entries. Intended as a
// startup maintenance operation; existing records are never altered, only
// the oldest dropped.
func (l *FileLog) Trim() error {
	records, err := l.Read()
	if err != nil {
		return err
	}
	if len(records) <= l.config.maxRecords {
		return nil
	}
	keep := records[len(records)-l.config.maxRecords:]

	var buf bytes.Buffer
	for _, rec := range keep {
		line, err := json.Marshal(rec)
		if err != nil {
			return &errors.AuditWriteError{Err: err}
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.config.path)
	tmp, err := os.CreateTemp(dir, ".audit-*.jsonl")
	if err != nil {
		return &errors.AuditWriteError{Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errors.AuditWriteError{Err: err}
	}
	if err := tmp.Chmod(l.config.filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errors.AuditWriteError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &errors.AuditWriteError{Err: err}
	}
	if err := os.Rename(tmpName, l.config.path); err != nil {
		os.Remove(tmpName)
		return &errors.AuditWriteError{Err: err}
	}
	return nil
}
