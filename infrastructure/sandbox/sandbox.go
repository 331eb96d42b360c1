// Package sandbox restricts filesystem targets to a configured allow-list
// of safe roots. All checks run on the canonical form of a path (symlinks
// resolved, ".." eliminated) so traversal tricks cannot bypass the roots.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// sandboxConfig holds configuration for the Sandbox.
type sandboxConfig struct {
	denyPatterns []string
	cwd          string
}

func defaultSandboxConfig() sandboxConfig {
	return sandboxConfig{}
}

// SandboxOption configures a Sandbox instance.
type SandboxOption func(*sandboxConfig)

// WithDenyPatterns adds doublestar patterns that reject a canonical path
// even inside a safe root (e.g. "**/.ssh/**").
func WithDenyPatterns(patterns []string) SandboxOption {
	return func(c *sandboxConfig) {
		c.denyPatterns = patterns
	}
}

// WithWorkingDirectory anchors relative input paths. Without it, relative
// paths resolve against the process working directory.
func WithWorkingDirectory(cwd string) SandboxOption {
	return func(c *sandboxConfig) {
		c.cwd = cwd
	}
}

// Sandbox is the PathSandbox implementation.
type Sandbox struct {
	roots  []string // canonical absolute roots
	config sandboxConfig
}

var _ ports.PathSandbox = (*Sandbox)(nil)

// New creates a Sandbox from the given roots. Each root is expanded
// ("~" to the home directory) and canonicalized; roots that cannot be
// resolved are rejected so a typo never silently widens the sandbox.
func New(roots []string, opts ...SandboxOption) (*Sandbox, error) {
	cfg := defaultSandboxConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		resolved, err := canonicalize(ExpandHome(root), cfg.cwd)
		if err != nil {
			return nil, &errors.PathResolutionError{Path: root, Err: err}
		}
		canonical = append(canonical, resolved)
	}

	return &Sandbox{roots: canonical, config: cfg}, nil
}

// Authorize canonicalizes path and checks root containment.
func (s *Sandbox) Authorize(path string) (string, error) {
	resolved, err := canonicalize(ExpandHome(path), s.config.cwd)
	if err != nil {
		return "", &errors.PathResolutionError{Path: path, Err: err}
	}

	for _, pattern := range s.config.denyPatterns {
		if matched, _ := doublestar.Match(pattern, resolved); matched {
			return "", &errors.SandboxError{Path: resolved}
		}
	}

	for _, root := range s.roots {
		if containsPath(root, resolved) {
			return resolved, nil
		}
	}
	return "", &errors.SandboxError{Path: resolved}
}

// Roots returns the canonical safe roots.
func (s *Sandbox) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// canonicalize resolves path to a symlink-free absolute form. The target
// need not exist: symlinks are resolved on the deepest existing ancestor
// and the remaining segments are re-joined, so a write to a not-yet-created
// file is still checked against the real parent directory.
func canonicalize(path, cwd string) (string, error) {
	cleaned := filepath.Clean(path)
	if !filepath.IsAbs(cleaned) {
		if cwd != "" {
			cleaned = filepath.Join(cwd, cleaned)
		} else {
			abs, err := filepath.Abs(cleaned)
			if err != nil {
				return "", err
			}
			cleaned = abs
		}
	}

	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved, nil
	}

	// Walk up to the deepest existing ancestor.
	prefix := cleaned
	var suffix []string
	for {
		parent := filepath.Dir(prefix)
		if parent == prefix {
			return cleaned, nil
		}
		suffix = append([]string{filepath.Base(prefix)}, suffix...)
		prefix = parent
		if resolved, err := filepath.EvalSymlinks(prefix); err == nil {
			parts := append([]string{resolved}, suffix...)
			return filepath.Join(parts...), nil
		}
	}
}

// containsPath reports whether target equals root or is a descendant of
// it, comparing path segments rather than raw string prefixes so that
// "/safeXYZ" never matches a root of "/safe".
func containsPath(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
