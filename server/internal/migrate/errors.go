package migrate

import (
	"fmt"
	"strings"
)

// DuplicateMigrationNameError is returned when two migrations share a name.
type DuplicateMigrationNameError struct {
	Name string
}

func (e *DuplicateMigrationNameError) Error() string {
	return fmt.Sprintf("duplicate migration name %q", e.Name)
}

// InvalidMigrationNameError is returned when a migration name does not follow
// the migration<Label><TimestampMillis> convention.
type InvalidMigrationNameError struct {
	Name   string
	Reason string
}

func (e *InvalidMigrationNameError) Error() string {
	return fmt.Sprintf("invalid migration name %q: %s", e.Name, e.Reason)
}

// TransformExecutionError is returned when a migration fails. The enclosing
// version change is aborted.
type TransformExecutionError struct {
	Name string
	Err  error
}

func (e *TransformExecutionError) Error() string {
	return fmt.Sprintf("migration %s failed: %s", e.Name, e.Err)
}

func (e *TransformExecutionError) Unwrap() error {
	return e.Err
}

// ReconciliationWriteError is returned when the audit records for unapplied
// migrations could not be written.
type ReconciliationWriteError struct {
	Missing []string
	Err     error
}

func (e *ReconciliationWriteError) Error() string {
	return fmt.Sprintf("failed to backfill migration records [%s]: %s", strings.Join(e.Missing, ", "), e.Err)
}

func (e *ReconciliationWriteError) Unwrap() error {
	return e.Err
}
