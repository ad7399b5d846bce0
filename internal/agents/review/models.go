// internal/agents/review/models.go
package review

// Satisfaction levels derived from the average rating.
const (
	SatisfactionSatisfied    = "Satisfied"
	SatisfactionNeutral      = "Neutral"
	SatisfactionDissatisfied = "Dissatisfied"
	SatisfactionNoReviews    = "No Reviews"
)

// Overall sentiment labels derived from keyword mentions.
const (
	SentimentVeryPositive   = "Very Positive"
	SentimentMostlyPositive = "Mostly Positive"
	SentimentMixed          = "Mixed"
	SentimentMostlyNegative = "Mostly Negative"
	SentimentNeutral        = "Neutral"
	SentimentNoData         = "No Data"
)

// Satisfaction summarizes the average rating. AverageRating is nil when the
// listing has no reviews.
type Satisfaction struct {
	Level         string   `json:"level"`
	Emoji         string   `json:"emoji"`
	AverageRating *float64 `json:"average_rating"`
	MaxRating     float64  `json:"max_rating"`
}

// RatingBucket is the count and share of one star value.
type RatingBucket struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// RatingDistribution buckets reviews by star value.
type RatingDistribution struct {
	FiveStar  RatingBucket `json:"5_star"`
	FourStar  RatingBucket `json:"4_star"`
	ThreeStar RatingBucket `json:"3_star"`
	TwoStar   RatingBucket `json:"2_star"`
	OneStar   RatingBucket `json:"1_star"`
}

// SentimentAnalysis combines the keyword-mention tally with a rating-based
// positive/neutral/negative split. The three percentages always sum to 100
// when reviews exist.
type SentimentAnalysis struct {
	Overall          string `json:"overall"`
	PositiveMentions int    `json:"positive_mentions"`
	NegativeMentions int    `json:"negative_mentions"`
	PositivePercent  int    `json:"positive_percent"`
	NeutralPercent   int    `json:"neutral_percent"`
	NegativePercent  int    `json:"negative_percent"`
}

// Theme is one recurring topic across review texts.
type Theme struct {
	Theme        string `json:"theme"`
	MentionCount int    `json:"mention_count"`
	Sentiment    string `json:"sentiment"`
}

// Analysis is the full review report for one listing. Read-only.
type Analysis struct {
	Title               string             `json:"title"`
	OverallSatisfaction Satisfaction       `json:"overall_satisfaction"`
	TotalReviews        int                `json:"total_reviews"`
	RatingDistribution  RatingDistribution `json:"rating_distribution"`
	SentimentAnalysis   SentimentAnalysis  `json:"sentiment_analysis"`
	RecurringThemes     []Theme            `json:"recurring_themes"`
	KeyInsights         []string           `json:"key_insights"`
	Recommendations     []string           `json:"recommendations"`
	Summary             string             `json:"summary"`
}
