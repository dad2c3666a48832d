package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"nafany/database"
	"nafany/models"
	"nafany/utils"

	"go.uber.org/zap"
)

// RankEntry is one provider's position in the rating leaderboard.
type RankEntry struct {
	Rank          int     `json:"rank"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Profession    string  `json:"profession"`
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int     `json:"ratingsCount"`
}

type Ranking struct {
	Rank          int         `json:"rank"`
	Total         int         `json:"total"`
	AverageRating float64     `json:"averageRating"`
	RatingsCount  int         `json:"ratingsCount"`
	Providers     []RankEntry `json:"providers"`
}

// BuildRanking orders providers by rounded average rating, then by ratings count, both
// descending. Aggregates are recomputed from the reviews rather than read from storage.
func BuildRanking(providers []models.Provider) []RankEntry {
	entries := make([]RankEntry, 0, len(providers))
	for i := range providers {
		agg := models.ComputeRatings(providers[i].Reviews)
		entries = append(entries, RankEntry{
			Email:         providers[i].Email,
			Name:          providers[i].Name,
			Profession:    providers[i].Profession,
			AverageRating: models.RoundRating(agg.Average),
			RatingsCount:  agg.Count,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AverageRating != entries[j].AverageRating {
			return entries[i].AverageRating > entries[j].AverageRating
		}
		if entries[i].RatingsCount != entries[j].RatingsCount {
			return entries[i].RatingsCount > entries[j].RatingsCount
		}
		return entries[i].Email < entries[j].Email
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Rank locates email in the leaderboard. The leaderboard is cached until the next review write.
func (s *DefaultProviderService) Rank(ctx context.Context, email string) (*Ranking, error) {
	entries, err := s.leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Email == email {
			return &Ranking{
				Rank:          e.Rank,
				Total:         len(entries),
				AverageRating: e.AverageRating,
				RatingsCount:  e.RatingsCount,
				Providers:     entries,
			}, nil
		}
	}
	return nil, fmt.Errorf("provider %s: %w", email, database.ErrNotFound)
}

func (s *DefaultProviderService) leaderboard(ctx context.Context) ([]RankEntry, error) {
	logger := utils.GetLogger()
	if s.Cache != nil {
		raw, ok, err := s.Cache.Get(ctx, utils.RankingCacheKey)
		if err != nil {
			logger.Warn("Ranking cache read failed", zap.Error(err))
		} else if ok {
			var entries []RankEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
		}
	}

	return s.rebuildRanking(ctx)
}

func (s *DefaultProviderService) rebuildRanking(ctx context.Context) ([]RankEntry, error) {
	providers, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := BuildRanking(providers)

	if s.Cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.Cache.Set(ctx, utils.RankingCacheKey, raw, s.RankingTTL); err != nil {
				utils.GetLogger().Warn("Ranking cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

// RefreshRanking recomputes the leaderboard and overwrites the cached copy.
func (s *DefaultProviderService) RefreshRanking(ctx context.Context) error {
	_, err := s.rebuildRanking(ctx)
	return err
}

func (s *DefaultProviderService) invalidateRanking(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, utils.RankingCacheKey); err != nil {
		utils.GetLogger().Warn("Ranking cache invalidation failed", zap.Error(err))
	}
}
