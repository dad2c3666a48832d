package models

import "math"

// RatingAggregate is the rolled-up view of a reviews array.
type RatingAggregate struct {
	Count   int
	Total   int
	Average float64
}

// ComputeRatings derives the aggregate from scratch. An empty slice averages to 0.
func ComputeRatings(reviews []Review) RatingAggregate {
	agg := RatingAggregate{Count: len(reviews)}
	for _, r := range reviews {
		agg.Total += r.Rating
	}
	if agg.Count > 0 {
		agg.Average = float64(agg.Total) / float64(agg.Count)
	}
	return agg
}

// ApplyRatings overwrites the stored aggregates with values computed from p.Reviews.
func (p *Provider) ApplyRatings() {
	agg := ComputeRatings(p.Reviews)
	p.RatingsCount = agg.Count
	p.RatingsTotal = agg.Total
	p.AverageRating = agg.Average
}

// ApplyWorksCount keeps worksCount equal to the length of the works array.
func (p *Provider) ApplyWorksCount() {
	p.WorksCount = len(p.Works)
}

// RoundRating rounds to one decimal place for display and ranking.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
