package observability

import (
	"context"
	"testing"
	"time"
)

type recordingLLMHooks struct {
	NoopLLMHooks
	calls     int
	fallbacks int
}

func (h *recordingLLMHooks) OnCall(ctx context.Context, provider, model string) { h.calls++ }
func (h *recordingLLMHooks) OnFallback(ctx context.Context, provider, reason string) {
	h.fallbacks++
}

func TestHooksRegistration(t *testing.T) {
	rec := &recordingLLMHooks{}
	SetLLMHooks(rec)
	defer SetLLMHooks(nil)

	LLM().OnCall(context.Background(), "huggingface", "gpt2")
	LLM().OnFallback(context.Background(), "huggingface", "timeout")
	LLM().OnResult(context.Background(), "huggingface", "gpt2", time.Millisecond, nil)

	if rec.calls != 1 || rec.fallbacks != 1 {
		t.Errorf("calls = %d, fallbacks = %d", rec.calls, rec.fallbacks)
	}
}

func TestNilResetsToNoop(t *testing.T) {
	SetAnalysisHooks(nil)
	SetCacheHooks(nil)
	SetLLMHooks(nil)

	// No-op hooks must be callable without panics.
	ctx := context.Background()
	Analysis().OnParseStart(ctx, "requirements.txt")
	Analysis().OnMatchComplete(ctx, 3, 1, time.Millisecond)
	Cache().OnCacheHit(ctx, "explain")
	LLM().OnCall(ctx, "gemini", "gemini-1.5-flash")
}
