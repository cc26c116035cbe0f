package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"voicetask/models"

	"go.uber.org/zap"
)

// CatalogService searches the provider directory and synthesizes availability.
type CatalogService interface {
	Search(ctx context.Context, params models.SearchParams) ([]models.Provider, error)
	AvailableSlots(p models.Provider) []models.TimeSlotDay
	FindByID(id string) (*models.Provider, bool)
	Categories() []string
}

// DefaultCatalogService serves the built-in catalog.
type DefaultCatalogService struct {
	Logger *zap.Logger
	Now    func() time.Time
}

// NewCatalogService returns a catalog using the wall clock.
func NewCatalogService(logger *zap.Logger) *DefaultCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCatalogService{Logger: logger, Now: time.Now}
}

func (s *DefaultCatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Search filters a category by query and location, falls back to the whole category when the
// filters match nothing, and ranks by descending rating keeping catalog order on ties.
func (s *DefaultCatalogService) Search(ctx context.Context, params models.SearchParams) ([]models.Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	category := NormalizeCategory(params.Category)
	entries := catalog[category]
	if len(entries) == 0 {
		return []models.Provider{}, nil
	}

	matches := filter(entries, params.Query, params.Location)
	if len(matches) == 0 && (params.Query != "" || params.Location != "") {
		s.logger().Debug("provider search fell back to category",
			zap.String("category", category),
			zap.String("query", params.Query),
			zap.String("location", params.Location))
		matches = append([]models.Provider(nil), entries...)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rating > matches[j].Rating
	})

	now := s.now()
	for i := range matches {
		matches[i].Category = category
		matches[i].NextAvailable, matches[i].AvailableSlotsSummary = summarize(synthesizeSlots(matches[i].ID, now))
	}
	return matches, nil
}

// AvailableSlots returns the synthesized working-day slots for a provider.
func (s *DefaultCatalogService) AvailableSlots(p models.Provider) []models.TimeSlotDay {
	return synthesizeSlots(p.ID, s.now())
}

// FindByID looks a provider up across all categories.
func (s *DefaultCatalogService) FindByID(id string) (*models.Provider, bool) {
	for category, entries := range catalog {
		for _, p := range entries {
			if p.ID == id {
				p.Category = category
				return &p, true
			}
		}
	}
	return nil, false
}

// Categories lists the known catalog keys, sorted.
func (s *DefaultCatalogService) Categories() []string {
	out := make([]string, 0, len(catalog))
	for c := range catalog {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (s *DefaultCatalogService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func filter(entries []models.Provider, query, location string) []models.Provider {
	query = strings.ToLower(strings.TrimSpace(query))
	location = strings.ToLower(strings.TrimSpace(location))

	var out []models.Provider
	for _, p := range entries {
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		if location != "" &&
			!strings.Contains(strings.ToLower(p.City), location) &&
			!strings.Contains(strings.ToLower(p.Address), location) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p models.Provider, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	for _, sp := range p.Specialties {
		if strings.Contains(strings.ToLower(sp), query) {
			return true
		}
	}
	return false
}
