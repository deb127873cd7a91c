// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about analysis execution, cache operations,
// and LLM calls.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnMatchComplete(ctx, reqCount, findingCount, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from the analysis pipeline.
type AnalysisHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, input string)
	OnParseComplete(ctx context.Context, input string, reqCount, warningCount int, duration time.Duration)

	// Match events
	OnMatchComplete(ctx context.Context, reqCount, findingCount int, duration time.Duration)

	// Explain events
	OnExplainStart(ctx context.Context, ruleID string)
	OnExplainComplete(ctx context.Context, ruleID, source string, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// LLMHooks receives events from language model calls.
type LLMHooks interface {
	// OnCall records an outgoing generation request.
	OnCall(ctx context.Context, provider, model string)

	// OnResult records a completed generation request.
	OnResult(ctx context.Context, provider, model string, duration time.Duration, err error)

	// OnFallback records a downgrade to the template path.
	OnFallback(ctx context.Context, provider, reason string)
}

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnParseStart(context.Context, string) {}
func (NoopAnalysisHooks) OnParseComplete(context.Context, string, int, int, time.Duration) {}
func (NoopAnalysisHooks) OnMatchComplete(context.Context, int, int, time.Duration) {}
func (NoopAnalysisHooks) OnExplainStart(context.Context, string) {}
func (NoopAnalysisHooks) OnExplainComplete(context.Context, string, string, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string) {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopLLMHooks is a no-op implementation of LLMHooks.
type NoopLLMHooks struct{}

func (NoopLLMHooks) OnCall(context.Context, string, string) {}
func (NoopLLMHooks) OnResult(context.Context, string, string, time.Duration, error) {}
func (NoopLLMHooks) OnFallback(context.Context, string, string) {}

var (
	mu            sync.RWMutex
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	llmHooks      LLMHooks      = NoopLLMHooks{}
)

// SetAnalysisHooks registers the analysis hooks. Pass nil to reset to no-op.
func SetAnalysisHooks(h AnalysisHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopAnalysisHooks{}
	}
	analysisHooks = h
}

// SetCacheHooks registers the cache hooks. Pass nil to reset to no-op.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopCacheHooks{}
	}
	cacheHooks = h
}

// SetLLMHooks registers the LLM hooks. Pass nil to reset to no-op.
func SetLLMHooks(h LLMHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NoopLLMHooks{}
	}
	llmHooks = h
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	mu.RLock()
	defer mu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// LLM returns the registered LLM hooks.
func LLM() LLMHooks {
	mu.RLock()
	defer mu.RUnlock()
	return llmHooks
}
