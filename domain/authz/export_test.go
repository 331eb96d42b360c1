package authz

// InflightSubjects reports how many subject locks are currently held or
// queued, for tests verifying the table does not grow with the session.
func (e *Engine) InflightSubjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}
