package services

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/core/ports/driving"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Ensure CitationService implements the interface.
var _ driving.CitationService = (*CitationService)(nil)

// DefaultCitationCacheSize is the number of documents whose citations are kept.
const DefaultCitationCacheSize = 64

// CitationService fetches citations and derives exhibit groupings. Lists
// are cached per source document until invalidated.
type CitationService struct {
	citationAPI driven.CitationAPI
	registry    driving.DocumentRegistry
	cache       *lru.Cache[string, []domain.Citation]
}

// NewCitationService creates a citation service. registry may be nil.
func NewCitationService(citationAPI driven.CitationAPI, registry driving.DocumentRegistry, cacheSize int) (*CitationService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCitationCacheSize
	}
	cache, err := lru.New[string, []domain.Citation](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create citation cache: %w", err)
	}
	return &CitationService{
		citationAPI: citationAPI,
		registry:    registry,
		cache:       cache,
	}, nil
}

// Citations returns the citations whose source is documentID.
func (s *CitationService) Citations(ctx context.Context, documentID string) ([]domain.Citation, error) {
	if documentID == "" {
		return nil, domain.NewValidationError("documentId", "is required")
	}
	if cached, ok := s.cache.Get(documentID); ok {
		return cloneCitations(cached), nil
	}
	if s.citationAPI == nil {
		return nil, fmt.Errorf("citation service: %w", domain.ErrNotConfigured)
	}

	citations, err := s.citationAPI.ListCitations(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list citations of %s: %w", documentID, err)
	}
	s.cache.Add(documentID, cloneCitations(citations))
	logger.Debug("citations: fetched %d for %s", len(citations), documentID)
	return citations, nil
}

// Graph returns the exhibit grouping of documentID's citations, rebuilt
// from the current list on every call.
func (s *CitationService) Graph(ctx context.Context, documentID string) (*domain.CitationGraph, error) {
	citations, err := s.Citations(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCitationGraph(citations), nil
}

// DeleteCitation removes one citation. The cached list and the registry
// count change only after the service confirms.
func (s *CitationService) DeleteCitation(ctx context.Context, documentID, citationID string) error {
	if documentID == "" {
		return domain.NewValidationError("documentId", "is required")
	}
	if citationID == "" {
		return domain.NewValidationError("citationId", "is required")
	}
	if s.citationAPI == nil {
		return fmt.Errorf("citation service: %w", domain.ErrNotConfigured)
	}

	if err := s.citationAPI.DeleteCitation(ctx, documentID, citationID); err != nil {
		return fmt.Errorf("delete citation %s: %w", citationID, err)
	}
	s.removeCached(documentID, citationID)

	if s.registry != nil {
		doc, err := s.registry.Get(documentID)
		if err == nil && doc.CitationsCount > 0 {
			count := doc.CitationsCount - 1
			if err := s.registry.UpdateStatus(documentID, domain.StatusUpdate{CitationsCount: &count}); err != nil &&
				!errors.Is(err, domain.ErrNotFound) {
				logger.Warn("citations: failed to update count of %s: %v", documentID, err)
			}
		}
	}
	return nil
}

// removeCached drops citationID from the cached list of documentID, keeping
// the order of the rest. Nothing is cached when the list was never fetched.
func (s *CitationService) removeCached(documentID, citationID string) {
	cached, ok := s.cache.Peek(documentID)
	if !ok {
		return
	}
	kept := make([]domain.Citation, 0, len(cached))
	for _, c := range cached {
		if c.ID != citationID {
			kept = append(kept, c)
		}
	}
	s.cache.Add(documentID, kept)
}

// Invalidate drops the cached citations of documentID.
func (s *CitationService) Invalidate(documentID string) {
	s.cache.Remove(documentID)
}

// OnExtractionChange invalidates a document's citations once its
// extraction finishes. It is a ChangeHook for the StatusPoller.
func (s *CitationService) OnExtractionChange(change domain.ExtractionChange) {
	if change.Finished() {
		s.Invalidate(change.DocumentID)
	}
}

func cloneCitations(in []domain.Citation) []domain.Citation {
	out := make([]domain.Citation, len(in))
	copy(out, in)
	return out
}
