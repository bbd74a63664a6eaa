// Package recordstore is a versioned, transactional record store on top of
// etcd. Records are JSON documents grouped into named collections. A store is
// opened at a target schema version; when the stored version differs, the
// store hands a version-change hook a read-only view of the pre-upgrade state
// and a buffered view of the post-upgrade state, then commits everything the
// hook wrote together with the new schema version in a single etcd
// transaction. If the hook fails, nothing is committed.
package recordstore
