// Package migrate applies schema migrations to a record store exactly once.
//
// Migrations are registered at build time in all_migrations.go and ordered by
// the millisecond timestamp embedded in their names. When the store is opened
// at a newer schema version, the Runner applies every migration that has no
// audit record and writes one for each, all inside the store's version change
// transaction. Separately, the Reconciler runs on every open and backfills
// audit records for migrations that a freshly created store never needed to
// run, so that they are not mistaken for pending migrations after a later
// upgrade.
//
// IMPORTANT: migration names must never change once released, since the audit
// records refer to them by name.
package migrate
