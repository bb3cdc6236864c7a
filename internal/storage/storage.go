// Package storage is the persistent key-value port behind the client session
// store. One namespace plays the role of one browser's local storage.
//
// No implementation offers compare-and-swap or transactions across calls, so
// a Get followed by a Set can interleave with another writer.
package storage

import "context"

// Store is a string key-value store scoped to one namespace.
type Store interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Keys lists every key in the namespace in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Provider hands out namespaced stores.
type Provider interface {
	Namespace(name string) Store
}
