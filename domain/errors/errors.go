// Package errors provides domain-specific error types for the safety core.
// Authorization denials are verdicts, not errors; the types here cover
// operational failures (path resolution, store and audit I/O, effect
// handlers) plus misuse of the capability registry. All types support
// unwrapping via errors.As() and errors.Is().
package errors

import (
	"fmt"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// CodedError exposes the reason code an error maps to, so callers can
// surface the taxonomy without type-switching on every error type.
type CodedError interface {
	error
	Code() entities.ReasonCode
}

// UnknownCapabilityError reports a capability name outside the enumerated
// set.
type UnknownCapabilityError struct {
	Name string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability: %q", e.Name)
}

func (e *UnknownCapabilityError) Code() entities.ReasonCode {
	return entities.ReasonUnknownCapability
}

// PathResolutionError reports a target path that could not be
// canonicalized.
type PathResolutionError struct {
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve path %q: %v", e.Path, e.Err)
}

func (e *PathResolutionError) Unwrap() error {
	return e.Err
}

func (e *PathResolutionError) Code() entities.ReasonCode {
	return entities.ReasonPathResolutionFailed
}

// SandboxError reports a canonical path falling outside every safe root.
type SandboxError struct {
	Path string
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("path outside safe roots: %q", e.Path)
}

func (e *SandboxError) Code() entities.ReasonCode {
	return entities.ReasonOutsideSafeRoots
}

// ConsentStoreError reports a persistence failure in the consent store.
type ConsentStoreError struct {
	Op  string // "load", "save", "revoke"
	Err error
}

func (e *ConsentStoreError) Error() string {
	return fmt.Sprintf("consent store %s failed: %v", e.Op, e.Err)
}

func (e *ConsentStoreError) Unwrap() error {
	return e.Err
}

// AuditWriteError reports a failed audit log append. It never blocks an
// already-committed execution decision; callers surface it as a warning.
type AuditWriteError struct {
	Err error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("audit log append failed: %v", e.Err)
}

func (e *AuditWriteError) Unwrap() error {
	return e.Err
}

func (e *AuditWriteError) Code() entities.ReasonCode {
	return entities.ReasonAuditWriteFailed
}

// BackupMissingError reports a mutating file operation whose effect handler
// did not produce a backup handle. The write is aborted.
type BackupMissingError struct {
	Path string
}

func (e *BackupMissingError) Error() string {
	return fmt.Sprintf("no backup produced before mutating %q", e.Path)
}

func (e *BackupMissingError) Code() entities.ReasonCode {
	return entities.ReasonBackupMissing
}

// EffectError wraps an opaque failure from an external effect handler.
// It is recorded verbatim and never retried automatically.
type EffectError struct {
	Kind entities.ActionKind
	Err  error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("effect handler for %s failed: %v", e.Kind, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

func (e *EffectError) Code() entities.ReasonCode {
	return entities.ReasonEffectHandlerFailure
}

// ConfigError reports a configuration validation failure at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
