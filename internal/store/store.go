// Package store provides the raw key-value storage the game persists its
// session blob through. Values are opaque strings; the game never depends
// on a backend understanding them.
package store

// KV is durable key-value storage. Get reports absence through its second
// return value rather than an error.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}
