// Package effect provides the filesystem effect handler. It performs the
// actual file I/O for allowed requests; it never authorizes anything
// itself. Mutating operations back up prior content before touching it and
// return the backup handle for the gate to verify.
package effect

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// BackupSuffix is appended to a file's path for its pre-mutation copy.
const BackupSuffix = ".backup"

// FSHandler handles file-read, file-write, file-delete, file-list, and
// file-find actions.
type FSHandler struct{}

var _ ports.EffectHandler = (*FSHandler)(nil)

// NewFSHandler creates an FSHandler.
func NewFSHandler() *FSHandler {
	return &FSHandler{}
}

// Perform executes the file operation on the sandbox-resolved path.
func (h *FSHandler) Perform(ctx context.Context, req entities.ActionRequest, canonicalPath string) (entities.EffectResult, error) {
	if err := ctx.Err(); err != nil {
		return entities.EffectResult{}, err
	}

	switch req.Kind {
	case entities.ActionFileRead:
		return h.read(canonicalPath)
	case entities.ActionFileWrite:
		return h.write(canonicalPath, req.Payload)
	case entities.ActionFileDelete:
		return h.remove(canonicalPath)
	case entities.ActionFileList:
		return h.list(canonicalPath)
	case entities.ActionFileFind:
		return h.find(ctx, canonicalPath, req.Detail)
	default:
		return entities.EffectResult{}, &errors.EffectError{
			Kind: req.Kind,
			Err:  fmt.Errorf("unsupported file action"),
		}
	}
}

func (h *FSHandler) read(path string) (entities.EffectResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileRead, Err: err}
	}
	return entities.EffectResult{
		Detail: fmt.Sprintf("read %s (%d bytes)", path, len(data)),
		Data:   map[string]any{"content": string(data), "size": len(data)},
	}, nil
}

// write backs up existing content, then replaces the file. The backup is
// created before any mutation so a failed write never loses prior state.
func (h *FSHandler) write(path string, payload []byte) (entities.EffectResult, error) {
	backup, err := h.backup(path)
	if err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileWrite, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileWrite, Err: err}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileWrite, Err: err}
	}
	return entities.EffectResult{
		Detail:       fmt.Sprintf("wrote %s (%d bytes)", path, len(payload)),
		Data:         map[string]any{"size": len(payload)},
		Replaced:     backup != "",
		BackupHandle: backup,
	}, nil
}

func (h *FSHandler) remove(path string) (entities.EffectResult, error) {
	backup, err := h.backup(path)
	if err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileDelete, Err: err}
	}
	if err := os.Remove(path); err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileDelete, Err: err}
	}
	return entities.EffectResult{
		Detail:       fmt.Sprintf("deleted %s", path),
		Replaced:     true,
		BackupHandle: backup,
	}, nil
}

func (h *FSHandler) list(dir string) (entities.EffectResult, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileList, Err: err}
	}
	names := make([]string, 0, len(listing))
	for _, e := range listing {
		names = append(names, e.Name())
	}
	return entities.EffectResult{
		Detail: fmt.Sprintf("listed %s (%d entries)", dir, len(names)),
		Data:   map[string]any{"files": names},
	}, nil
}

// find walks root matching base names against the request detail, first as
// a doublestar pattern and otherwise as a case-insensitive substring.
func (h *FSHandler) find(ctx context.Context, root, pattern string) (entities.EffectResult, error) {
	if pattern == "" {
		pattern = "*"
	}
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if matched, _ := doublestar.Match(pattern, name); matched ||
			strings.Contains(strings.ToLower(name), strings.ToLower(pattern)) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return entities.EffectResult{}, &errors.EffectError{Kind: entities.ActionFileFind, Err: err}
	}
	return entities.EffectResult{
		Detail: fmt.Sprintf("found %d matches under %s", len(matches), root),
		Data:   map[string]any{"matches": matches},
	}, nil
}

// backup copies path to path+BackupSuffix when it exists. Returns the
// backup handle, or empty when there was nothing to back up.
func (h *FSHandler) backup(path string) (string, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	backupPath := path + BackupSuffix
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return backupPath, nil
}
