// Package cache provides pluggable caching backends for depexplain.
//
// The [Cache] interface is implemented by a file-based backend for CLI
// usage, a Redis backend for server deployments, and a null backend that
// disables caching. Cached payloads are opaque byte slices; callers are
// responsible for serialization.
//
// Keys are generated through a [Keyer] so that different concerns
// (HTTP responses, LLM explanations) occupy distinct namespaces and can
// be scoped per tenant with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different cached artifact kinds.
type Keyer interface {
	// HTTPKey generates a key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// ExplanationKey generates a key for a cached LLM explanation.
	ExplanationKey(provider, model, promptHash string) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + key
}

// ExplanationKey generates a key for LLM explanation caching.
func (k *DefaultKeyer) ExplanationKey(provider, model, promptHash string) string {
	return "explain:" + provider + ":" + model + ":" + promptHash
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ExplanationKey generates a prefixed key for LLM explanation caching.
func (k *ScopedKeyer) ExplanationKey(provider, model, promptHash string) string {
	return k.prefix + k.inner.ExplanationKey(provider, model, promptHash)
}
