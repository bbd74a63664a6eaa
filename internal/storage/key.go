package storage

import (
	"path"
	"strings"
)

// Keys are absolute, slash-separated paths. A record store under root uses:
//
//	/<root>/meta/schema              schema version of the store
//	/<root>/records/<collection>/<id> one record
//
// Collections are read with the /<root>/records/<collection>/ prefix.

// Prefix joins elem into an absolute key prefix that ends in a slash, so that
// a range over /root/records/person/ doesn't also match
// /root/records/person_archive/.
func Prefix(elem ...string) string {
	return Key(elem...) + "/"
}

// Key joins elem into an absolute key. Empty elements are dropped and
// repeated slashes collapsed.
func Key(elem ...string) string {
	k := path.Join(elem...)
	if !strings.HasPrefix(k, "/") {
		k = "/" + k
	}
	return k
}

// ensureTrailingSlash guards range reads against prefixes that were built
// with fmt.Sprintf or path.Join instead of Prefix.
func ensureTrailingSlash(prefix string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
