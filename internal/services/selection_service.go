package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"retailpulse/internal/analytics"
	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Selection is the section and view the viewer currently shows.
type Selection struct {
	Section   domain.Section `json:"section"`
	View      string         `json:"view,omitempty"`
	Version   uint64         `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SelectionService holds the process-wide current selection. Writers are
// serialized and observers are notified in write order.
type SelectionService struct {
	mu        sync.Mutex
	current   Selection
	observers []func(Selection)
	logger    *slog.Logger
}

// NewSelectionService starts with the first section selected.
func NewSelectionService(logger *slog.Logger) *SelectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectionService{
		current: Selection{
			Section:   domain.Sections[0],
			UpdatedAt: time.Now(),
		},
		logger: logger.With(slog.String("component", "selection")),
	}
}

// Current returns the current selection.
func (s *SelectionService) Current() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Observe registers fn to be called after every change. fn must not block.
func (s *SelectionService) Observe(fn func(Selection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Select changes the current selection. An empty view selects the whole
// section; a named view must belong to section.
func (s *SelectionService) Select(ctx context.Context, section domain.Section, view string) (Selection, error) {
	if !section.Valid() {
		return Selection{}, errors.NewNotFoundError(fmt.Sprintf("section %q", section))
	}
	if view != "" {
		v, ok := analytics.Lookup(view)
		if !ok {
			return Selection{}, errors.NewNotFoundError(fmt.Sprintf("view %q", view))
		}
		if v.Section != section {
			return Selection{}, errors.NewAppValidationError(fmt.Sprintf("view %s is not part of section %s", view, section))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Selection{
		Section:   section,
		View:      view,
		Version:   s.current.Version + 1,
		UpdatedAt: time.Now(),
	}
	for _, fn := range s.observers {
		fn(s.current)
	}

	s.logger.InfoContext(ctx, "selection changed",
		slog.String("section", string(section)),
		slog.String("view", view),
		slog.Uint64("version", s.current.Version))
	return s.current, nil
}
