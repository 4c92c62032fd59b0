package service

import (
	"context"
	"time"

	"tumaini-be/internal/entity"
	"tumaini-be/internal/pkg/logger"
	"tumaini-be/internal/repository/contract"
	"tumaini-be/internal/repository/specification"

	"github.com/patrickmn/go-cache"
)

const (
	cacheKeyTiers  = "content:tiers"
	cacheKeyImpact = "content:impact"
)

// IContentService serves the CMS-managed public pages: suggested giving
// tiers and the aggregated impact summary. Both are read-heavy and cached;
// staleness of a few minutes is acceptable.
type IContentService interface {
	ActiveTiers(ctx context.Context) ([]*entity.DonationTier, error)
	Impact(ctx context.Context) (*entity.ImpactSummary, error)
}

type contentService struct {
	tiers     contract.TierRepository
	donations contract.DonationRepository
	pledges   contract.PledgeRepository
	cache     *cache.Cache
	logger    logger.ILogger
}

func NewContentService(
	tiers contract.TierRepository,
	donations contract.DonationRepository,
	pledges contract.PledgeRepository,
	log logger.ILogger,
) IContentService {
	return &contentService{
		tiers:     tiers,
		donations: donations,
		pledges:   pledges,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
		logger:    log,
	}
}

func (s *contentService) ActiveTiers(ctx context.Context) ([]*entity.DonationTier, error) {
	if cached, found := s.cache.Get(cacheKeyTiers); found {
		return cached.([]*entity.DonationTier), nil
	}

	tiers, err := s.tiers.FindAll(ctx,
		specification.FilterBy{Field: "is_active", Value: true},
		specification.OrderBy{Field: "sort_order"},
	)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKeyTiers, tiers, cache.DefaultExpiration)
	return tiers, nil
}

func (s *contentService) Impact(ctx context.Context) (*entity.ImpactSummary, error) {
	if cached, found := s.cache.Get(cacheKeyImpact); found {
		return cached.(*entity.ImpactSummary), nil
	}

	totals, err := s.donations.TotalRaised(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.donations.CountByStatus(ctx, entity.DonationStatusCompleted)
	if err != nil {
		return nil, err
	}
	recurring, err := s.pledges.CountByStatus(ctx, entity.PledgeStatusActive)
	if err != nil {
		return nil, err
	}

	summary := &entity.ImpactSummary{
		TotalRaised:    totals,
		CompletedCount: completed,
		RecurringCount: recurring,
		GeneratedAt:    time.Now(),
	}
	s.cache.Set(cacheKeyImpact, summary, cache.DefaultExpiration)
	return summary, nil
}
