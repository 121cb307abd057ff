package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
)

const activeVersionCacheKey = "questionnaire:active"

// Provider gives the scoring pipeline access to questionnaire versions
type Provider interface {
	GetActiveVersion(ctx context.Context) (*Catalog, error)
	GetVersion(ctx context.Context, versionID string) (*Catalog, error)
	LookupPhysicalPercentage(ctx context.Context, versionID string, primaryRounded, combinedRounded int) (int, error)
}

// ErrLookupMiss is wrapped by LookupPhysicalPercentage when no entry exists
var ErrLookupMiss = errors.New("no lookup entry for score pair")

// Store loads versions from the questionnaire repository. Loaded versions are kept
// in memory for the life of the process since they never change; only the id of
// the active version goes through the shared cache.
type Store struct {
	repo      repositories.QuestionnaireRepository
	cache     cache.CacheService
	logger    *slog.Logger
	activeTTL time.Duration

	mu       sync.RWMutex
	versions map[string]*Catalog
}

func NewStore(repo repositories.QuestionnaireRepository, cacheService cache.CacheService, logger *slog.Logger, activeTTL time.Duration) *Store {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	return &Store{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		activeTTL: activeTTL,
		versions:  make(map[string]*Catalog),
	}
}

func (s *Store) GetActiveVersion(ctx context.Context) (*Catalog, error) {
	var activeID string
	if err := s.cache.Get(ctx, activeVersionCacheKey, &activeID); err == nil && activeID != "" {
		if c, err := s.GetVersion(ctx, activeID); err == nil {
			return c, nil
		}
	}

	version, err := s.repo.GetActive(ctx, nil)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, apperrors.NewConfigurationError("catalog", "no active questionnaire version", err)
		}
		return nil, fmt.Errorf("failed to load active questionnaire: %w", err)
	}

	if err := s.cache.Set(ctx, activeVersionCacheKey, version.ID, s.activeTTL); err != nil {
		s.logger.Warn("Failed to cache active questionnaire id", "version_id", version.ID, "error", err)
	}

	return s.GetVersion(ctx, version.ID)
}

func (s *Store) GetVersion(ctx context.Context, versionID string) (*Catalog, error) {
	s.mu.RLock()
	c, ok := s.versions[versionID]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	version, err := s.repo.GetVersion(ctx, nil, versionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, apperrors.NewConfigurationError("catalog", fmt.Sprintf("questionnaire version %s not found", versionID), err)
		}
		return nil, fmt.Errorf("failed to load questionnaire version: %w", err)
	}

	entries, err := s.repo.GetLookupEntries(ctx, nil, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup table: %w", err)
	}

	c, err = New(*version, version.Questions, entries)
	if err != nil {
		s.logger.Error("Questionnaire version failed validation",
			"version_id", versionID,
			"data_seeding_defect", true,
			"error", err)
		return nil, err
	}

	s.mu.Lock()
	s.versions[versionID] = c
	s.mu.Unlock()

	s.logger.Info("Loaded questionnaire version",
		"version_id", versionID,
		"questions", c.QuestionCount(),
		"scheme", c.Scheme())

	return c, nil
}

func (s *Store) LookupPhysicalPercentage(ctx context.Context, versionID string, primaryRounded, combinedRounded int) (int, error) {
	c, err := s.GetVersion(ctx, versionID)
	if err != nil {
		return 0, err
	}
	pct, ok := c.LookupPhysicalPercentage(primaryRounded, combinedRounded)
	if !ok {
		return 0, apperrors.NewConfigurationError("lookup_table",
			fmt.Sprintf("version %s (%d, %d)", versionID, primaryRounded, combinedRounded), ErrLookupMiss)
	}
	return pct, nil
}

// InvalidateActive drops the cached active version id after an activation
func (s *Store) InvalidateActive(ctx context.Context) error {
	return s.cache.Delete(ctx, activeVersionCacheKey)
}

// StaticProvider serves fixed, pre-built catalogs. The first catalog is active.
type StaticProvider struct {
	active   *Catalog
	versions map[string]*Catalog
}

func NewStaticProvider(active *Catalog, others ...*Catalog) *StaticProvider {
	p := &StaticProvider{
		active:   active,
		versions: map[string]*Catalog{active.ID(): active},
	}
	for _, c := range others {
		p.versions[c.ID()] = c
	}
	return p
}

func (p *StaticProvider) GetActiveVersion(ctx context.Context) (*Catalog, error) {
	return p.active, nil
}

func (p *StaticProvider) GetVersion(ctx context.Context, versionID string) (*Catalog, error) {
	c, ok := p.versions[versionID]
	if !ok {
		return nil, apperrors.NewConfigurationError("catalog", fmt.Sprintf("questionnaire version %s not found", versionID), nil)
	}
	return c, nil
}

func (p *StaticProvider) LookupPhysicalPercentage(ctx context.Context, versionID string, primaryRounded, combinedRounded int) (int, error) {
	c, err := p.GetVersion(ctx, versionID)
	if err != nil {
		return 0, err
	}
	pct, ok := c.LookupPhysicalPercentage(primaryRounded, combinedRounded)
	if !ok {
		return 0, apperrors.NewConfigurationError("lookup_table",
			fmt.Sprintf("version %s (%d, %d)", versionID, primaryRounded, combinedRounded), ErrLookupMiss)
	}
	return pct, nil
}
