package ports

import "github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"

// AuditLog is the append-only record of authorization decisions and
// execution outcomes. Append failures surface as *errors.AuditWriteError;
// they never reverse an already-committed execution decision.
type AuditLog interface {
	Append(rec entities.AuditRecord) error
}
