package recordstore

import "errors"

// ErrReadOnlyView is returned when writing to a view that does not accept
// writes, such as the pre-upgrade view passed to a version-change hook.
var ErrReadOnlyView = errors.New("view is read-only")

// ErrSchemaVersionAhead indicates that the stored schema version is newer than
// the version the store is being opened at. Downgrades are not supported.
var ErrSchemaVersionAhead = errors.New("stored schema version is ahead of target version")

// ErrConcurrentOpen indicates that the schema metadata changed while the store
// was being opened, e.g. because another process opened and migrated it.
var ErrConcurrentOpen = errors.New("store was modified during open")

// ErrConflict indicates that a key written in an update transaction was
// modified by someone else after the transaction's snapshot was taken.
var ErrConflict = errors.New("transaction conflict")

// ErrCommitFailed wraps any failure to commit a write transaction.
var ErrCommitFailed = errors.New("failed to commit transaction")

// ErrNotInitialized indicates that the store has never been opened.
var ErrNotInitialized = errors.New("store has not been initialized")

// ErrInvalidKey indicates an empty collection name or ID, or one that contains
// a slash.
var ErrInvalidKey = errors.New("invalid collection or id")
