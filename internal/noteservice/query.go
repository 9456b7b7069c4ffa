package noteservice

import (
	"context"
	"regexp"
	"strings"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/storage"
)

// ListAll returns every note in file order.
func (s *Service) ListAll(_ context.Context) ([]models.Note, error) {
	return s.store.Load()
}

// ListLatest returns the notes after the first n+1 in file order, i.e.
// notes[n+1:]. It does not return the last n notes.
func (s *Service) ListLatest(_ context.Context, n int) ([]models.Note, error) {
	if n < 0 {
		return nil, apperr.Invalid("latest count %d must not be negative", n)
	}
	notes, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if n >= len(notes)-1 {
		return []models.Note{}, nil
	}
	return notes[n+1:], nil
}

// GroupByDate partitions notes by exact date text. Groups appear in the
// order their date is first seen; notes keep file order inside a group.
func (s *Service) GroupByDate(_ context.Context) ([]models.DateGroup, error) {
	notes, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	var groups []models.DateGroup
	index := make(map[string]int)
	for _, n := range notes {
		i, ok := index[n.Date]
		if !ok {
			i = len(groups)
			index[n.Date] = i
			groups = append(groups, models.DateGroup{Date: n.Date})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	return groups, nil
}

// FilterByStatus keeps notes whose status equals status, or, with exclude,
// the notes whose status differs.
func (s *Service) FilterByStatus(_ context.Context, status models.Status, exclude bool) ([]models.Note, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}
	notes, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return filter(notes, func(n models.Note) bool {
		return (n.Status == status) != exclude
	}), nil
}

// SearchSubstring returns notes whose date or content contains key.
// Matching is case-sensitive.
func (s *Service) SearchSubstring(_ context.Context, key string) ([]models.Note, error) {
	notes, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return filter(notes, func(n models.Note) bool {
		return strings.Contains(n.Date, key) || strings.Contains(n.Content, key)
	}), nil
}

// SearchPattern returns notes whose content matches pattern at its start,
// ignoring case. The match need not cover the whole content.
func (s *Service) SearchPattern(_ context.Context, pattern string) ([]models.Note, error) {
	re, err := compilePrefixPattern(pattern)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return filter(notes, func(n models.Note) bool {
		return re.MatchString(n.Content)
	}), nil
}

// NextID returns the id the next added note would get.
func (s *Service) NextID(_ context.Context) (int, error) {
	notes, err := s.store.Load()
	if err != nil {
		return 0, err
	}
	return storage.NextID(notes), nil
}

// compilePrefixPattern anchors pattern at the start of the input. The
// pattern is compiled on its own first so unbalanced groups cannot escape
// the anchor.
func compilePrefixPattern(pattern string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, apperr.Invalid("pattern %q: %v", pattern, err)
	}
	return regexp.MustCompile(`^(?i:` + pattern + `)`), nil
}

func filter(notes []models.Note, keep func(models.Note) bool) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
