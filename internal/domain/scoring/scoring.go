// Package scoring computes an expert's ranking score from raw
// performance counters.
package scoring

import (
	"math"

	"github.com/consultly/expertrank/internal/domain/model"
)

// Default scoring configuration. Weights sum to a 1000-point scale; the
// volume-driven components cap early so the first 100 sessions and first
// 50 reviews dominate the score.
const (
	defaultSessionWeight = 400.0
	defaultRatingWeight  = 300.0
	defaultReviewWeight  = 150.0
	defaultRepeatWeight  = 100.0
	defaultLikeWeight    = 50.0

	defaultSessionCap = 100
	defaultReviewCap  = 50
	defaultLikeCap    = 100

	maxRating = 5.0
)

// Weights holds the per-component score weights.
type Weights struct {
	Session float64
	Rating  float64
	Review  float64
	Repeat  float64
	Like    float64
}

// Caps holds the volume thresholds at which each capped component stops
// growing.
type Caps struct {
	Sessions int
	Reviews  int
	Likes    int
}

// Breakdown reports the per-component contributions of a score.
type Breakdown struct {
	Session float64 `json:"sessionScore"`
	Rating  float64 `json:"ratingScore"`
	Review  float64 `json:"reviewScore"`
	Repeat  float64 `json:"repeatScore"`
	Like    float64 `json:"likeScore"`
	Total   float64 `json:"total"`
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWeights overrides component weights. Non-positive fields keep
// their defaults.
func WithWeights(w Weights) Option {
	return func(c *Calculator) {
		if w.Session > 0 {
			c.weights.Session = w.Session
		}
		if w.Rating > 0 {
			c.weights.Rating = w.Rating
		}
		if w.Review > 0 {
			c.weights.Review = w.Review
		}
		if w.Repeat > 0 {
			c.weights.Repeat = w.Repeat
		}
		if w.Like > 0 {
			c.weights.Like = w.Like
		}
	}
}

// WithCaps overrides component volume caps. Non-positive fields keep
// their defaults.
func WithCaps(caps Caps) Option {
	return func(c *Calculator) {
		if caps.Sessions > 0 {
			c.caps.Sessions = caps.Sessions
		}
		if caps.Reviews > 0 {
			c.caps.Reviews = caps.Reviews
		}
		if caps.Likes > 0 {
			c.caps.Likes = caps.Likes
		}
	}
}

// Calculator derives a single non-negative ranking score from five
// weighted raw metrics. It is a pure computation holder: no I/O, no
// shared mutable state, safe for concurrent use.
type Calculator struct {
	weights Weights
	caps    Caps
}

// New creates a Calculator with default weights and caps.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		weights: Weights{
			Session: defaultSessionWeight,
			Rating:  defaultRatingWeight,
			Review:  defaultReviewWeight,
			Repeat:  defaultRepeatWeight,
			Like:    defaultLikeWeight,
		},
		caps: Caps{
			Sessions: defaultSessionCap,
			Reviews:  defaultReviewCap,
			Likes:    defaultLikeCap,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Score returns the weighted ranking score for stats, rounded to two
// decimals and never negative.
func (c *Calculator) Score(stats model.ExpertStats) float64 {
	return c.Breakdown(stats).Total
}

// Breakdown computes the score together with its per-component
// contributions. Components are rounded to two decimals for display;
// the total is rounded from the unrounded sum.
func (c *Calculator) Breakdown(stats model.ExpertStats) Breakdown {
	session := cappedRatio(stats.TotalSessions, c.caps.Sessions) * c.weights.Session
	rating := stats.AvgRating / maxRating * c.weights.Rating
	review := cappedRatio(stats.ReviewCount, c.caps.Reviews) * c.weights.Review

	// Repeat rate is undefined with no sessions; treat it as zero
	// rather than letting the division produce NaN.
	var repeat float64
	if stats.TotalSessions > 0 {
		repeat = float64(stats.RepeatClients) / float64(stats.TotalSessions) * c.weights.Repeat
	}

	like := cappedRatio(stats.LikeCount, c.caps.Likes) * c.weights.Like

	total := round2(session + rating + review + repeat + like)
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Session: round2(session),
		Rating:  round2(rating),
		Review:  round2(review),
		Repeat:  round2(repeat),
		Like:    round2(like),
		Total:   total,
	}
}

// cappedRatio returns count/limit clamped to [0, 1].
func cappedRatio(count, limit int) float64 {
	if limit <= 0 || count <= 0 {
		return 0
	}
	return math.Min(float64(count)/float64(limit), 1)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
