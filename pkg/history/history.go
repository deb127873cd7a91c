// Package history persists analysis reports so they can be retrieved
// later by ID, most recently generated first.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/report"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Entry is the listing summary of a stored report.
type Entry struct {
	ID          uuid.UUID      `json:"id"`
	Input       string         `json:"input"`
	GeneratedAt time.Time      `json:"generated_at"`
	Findings    int            `json:"findings"`
	Compatible  bool           `json:"compatible"`
	MaxSeverity rules.Severity `json:"max_severity"`
}

func entryFor(r *report.Report) Entry {
	return Entry{
		ID:          r.ID,
		Input:       r.Input,
		GeneratedAt: r.GeneratedAt,
		Findings:    len(r.Findings),
		Compatible:  r.Compatible,
		MaxSeverity: r.MaxSeverity(),
	}
}

// Store persists reports. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a report. Saving the same ID twice overwrites.
	Save(ctx context.Context, r *report.Report) error

	// Get retrieves a report by ID. Returns an ErrCodeReportNotFound
	// error when no report has that ID.
	Get(ctx context.Context, id uuid.UUID) (*report.Report, error)

	// List returns summaries of stored reports, newest first. A limit of
	// 0 means no limit.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Delete removes a report. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

func notFound(id uuid.UUID) error {
	return dperrors.New(dperrors.ErrCodeReportNotFound, "no report with id %s", id)
}

// MemoryStore keeps reports in process memory. It backs the server when no
// MongoDB URI is configured; history is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]*report.Report
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[uuid.UUID]*report.Report)}
}

// Save stores a report.
func (s *MemoryStore) Save(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
	return nil
}

// Get retrieves a report by ID.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, notFound(id)
	}
	return r, nil
}

// List returns summaries, newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.reports))
	for _, r := range s.reports {
		entries = append(entries, entryFor(r))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].GeneratedAt.After(entries[j].GeneratedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Delete removes a report.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }
