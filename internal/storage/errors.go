package storage

import "errors"

// ErrNotFound is returned by single-key reads when the key has no value.
var ErrNotFound = errors.New("key not found")

// ErrAlreadyExists is returned by create operations when the key is already
// set.
var ErrAlreadyExists = errors.New("key already exists")

// ErrValueVersionMismatch is returned by update operations when the key has
// been written since the value was read, or was never written.
var ErrValueVersionMismatch = errors.New("value version mismatch")

// ErrOperationConstraintViolated is returned when a transaction's compares
// fail. Callers that guard on revisions treat it as a write conflict.
var ErrOperationConstraintViolated = errors.New("operation constraint violated")

// ErrDuplicateKeysInTransaction is returned when two operations in one
// transaction write the same key.
var ErrDuplicateKeysInTransaction = errors.New("duplicate keys in transaction")
