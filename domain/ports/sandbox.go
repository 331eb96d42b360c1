package ports

// PathSandbox validates filesystem targets against the configured safe
// roots.
type PathSandbox interface {
	// Authorize canonicalizes path (symlinks resolved, ".." eliminated)
	// and returns the canonical form when it is equal to or a descendant
	// of a safe root. Failures are *errors.PathResolutionError or
	// *errors.SandboxError.
	Authorize(path string) (canonical string, err error)

	// Roots returns the canonical safe roots, for display.
	Roots() []string
}
