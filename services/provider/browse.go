package provider

import (
	"context"
	"sort"

	providerRepo "nafany/database/repository/provider"
	"nafany/models"
)

const unknownGovernorate = "غير محدد"

type BrowseQuery struct {
	Category    string
	Profession  string
	Governorate string
	Page        int
}

type BrowseResult struct {
	Providers    []models.ProviderSummary `json:"providers"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"pageSize"`
	Total        int                      `json:"total"`
	TotalPages   int                      `json:"totalPages"`
	Professions  []string                 `json:"professions"`
	Governorates []string                 `json:"governorates"`
}

// Browse lists the providers of a category and profession. Ratings come from the
// embedded reviews, and the governorate facet is computed before the governorate filter.
func (s *DefaultProviderService) Browse(ctx context.Context, q BrowseQuery) (*BrowseResult, error) {
	providers, err := s.Repo.List(ctx, providerRepo.ListFilter{Category: q.Category, Profession: q.Profession})
	if err != nil {
		return nil, err
	}

	professions := map[string]bool{}
	governorates := map[string]bool{}
	matched := make([]models.ProviderSummary, 0, len(providers))
	for i := range providers {
		summary := providers[i].Summary()
		if summary.Governorate == "" {
			summary.Governorate = unknownGovernorate
		}
		professions[summary.Profession] = true
		governorates[summary.Governorate] = true
		if q.Governorate != "" && summary.Governorate != q.Governorate {
			continue
		}
		matched = append(matched, summary)
	}

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize
	start := total
	if page <= totalPages {
		start = (page - 1) * pageSize
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &BrowseResult{
		Providers:    matched[start:end],
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   totalPages,
		Professions:  sortedKeys(professions),
		Governorates: sortedKeys(governorates),
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
