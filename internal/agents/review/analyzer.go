// internal/agents/review/analyzer.go
// Package review summarizes guest feedback for a listing: rating
// distribution, satisfaction level, keyword sentiment and recurring themes.
// Read-only.
package review

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"insight-service/internal/backend"
	"insight-service/internal/common/errors"
	"insight-service/internal/common/logger"
	"insight-service/internal/models"
)

type Analyzer struct {
	config  *Config
	backend backend.DataClient
	logger  logger.Logger
}

func NewAnalyzer(config *Config, client backend.DataClient, log logger.Logger) *Analyzer {
	if config.TopThemeCount <= 0 {
		config.TopThemeCount = 5
	}
	return &Analyzer{
		config:  config,
		backend: client,
		logger:  log.WithFields(map[string]interface{}{"agent": "ReviewAnalysisAgent"}),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, listingID string) (*Analysis, error) {
	listing, err := a.backend.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	reviews, err := a.backend.GetReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if len(reviews) == 0 {
		if a.config.ZeroOnEmpty {
			return a.emptyAnalysis(listing.Title), nil
		}
		return nil, errors.NewEmptyDataSetError("review analysis", fmt.Sprintf("reviews for listing %s", listingID))
	}

	total := len(reviews)
	avgRating := averageRating(reviews)
	level, emoji := a.satisfaction(avgRating)

	positiveMentions, negativeMentions := countMentions(reviews)
	issues, adviceByIssue := extractIssues(reviews)
	praise := extractPraise(reviews)

	insights, recommendations := a.buildAdvice(level, issues, adviceByIssue, praise)

	rounded := round1(avgRating)
	analysis := &Analysis{
		Title: fmt.Sprintf("Review Analysis for '%s'", listing.Title),
		OverallSatisfaction: Satisfaction{
			Level:         level,
			Emoji:         emoji,
			AverageRating: &rounded,
			MaxRating:     5.0,
		},
		TotalReviews:       total,
		RatingDistribution: distribution(reviews),
		SentimentAnalysis:  a.sentiment(reviews, positiveMentions, negativeMentions),
		RecurringThemes:    a.recurringThemes(reviews),
		KeyInsights:        insights,
		Recommendations:    recommendations,
		Summary:            a.buildSummary(total, avgRating, level, issues, praise, recommendations),
	}

	a.logger.Info("review analysis complete", map[string]interface{}{
		"listingId":     listingID,
		"totalReviews":  total,
		"averageRating": rounded,
		"satisfaction":  level,
	})

	return analysis, nil
}

func (a *Analyzer) emptyAnalysis(listingTitle string) *Analysis {
	return &Analysis{
		Title: fmt.Sprintf("Review Analysis for '%s'", listingTitle),
		OverallSatisfaction: Satisfaction{
			Level:     SatisfactionNoReviews,
			Emoji:     "❓",
			MaxRating: 5.0,
		},
		SentimentAnalysis: SentimentAnalysis{Overall: SentimentNoData},
		RecurringThemes:   []Theme{},
		KeyInsights:       []string{"No reviews available for analysis"},
		Recommendations: []string{
			"Encourage your first guests to leave reviews",
			"Offer excellent service to earn positive feedback",
			"Follow up with guests after checkout to request reviews",
		},
		Summary: fmt.Sprintf("No reviews have been submitted for '%s' yet. Focus on delivering great experiences to earn your first reviews.", listingTitle),
	}
}

func averageRating(reviews []models.Review) float64 {
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

func (a *Analyzer) satisfaction(avgRating float64) (level, emoji string) {
	switch {
	case avgRating >= a.config.SatisfiedThreshold:
		return SatisfactionSatisfied, "😊"
	case avgRating >= a.config.NeutralThreshold:
		return SatisfactionNeutral, "😐"
	default:
		return SatisfactionDissatisfied, "😞"
	}
}

func distribution(reviews []models.Review) RatingDistribution {
	counts := make(map[int]int)
	for _, r := range reviews {
		counts[r.Rating]++
	}
	total := len(reviews)
	bucket := func(stars int) RatingBucket {
		return RatingBucket{
			Count:      counts[stars],
			Percentage: roundPercent(counts[stars], total),
		}
	}
	return RatingDistribution{
		FiveStar:  bucket(5),
		FourStar:  bucket(4),
		ThreeStar: bucket(3),
		TwoStar:   bucket(2),
		OneStar:   bucket(1),
	}
}

func countMentions(reviews []models.Review) (positive, negative int) {
	for _, r := range reviews {
		comment := strings.ToLower(r.Comment)
		for _, word := range positiveKeywords {
			if strings.Contains(comment, word) {
				positive++
			}
		}
		for _, word := range negativeKeywords {
			if strings.Contains(comment, word) {
				negative++
			}
		}
	}
	return positive, negative
}

// sentiment labels the keyword balance and splits reviews into
// positive/neutral/negative shares by rating. The shares sum to 100.
func (a *Analyzer) sentiment(reviews []models.Review, positiveMentions, negativeMentions int) SentimentAnalysis {
	overall := SentimentNeutral
	if totalWords := positiveMentions + negativeMentions; totalWords > 0 {
		ratio := float64(positiveMentions) / float64(totalWords)
		switch {
		case ratio >= 0.7:
			overall = SentimentVeryPositive
		case ratio >= 0.5:
			overall = SentimentMostlyPositive
		case ratio >= 0.3:
			overall = SentimentMixed
		default:
			overall = SentimentMostlyNegative
		}
	}

	var pos, neu, neg int
	for _, r := range reviews {
		switch {
		case r.Rating >= 4:
			pos++
		case r.Rating == 3:
			neu++
		default:
			neg++
		}
	}

	total := len(reviews)
	posPercent := roundPercent(pos, total)
	neuPercent := roundPercent(neu, total)

	return SentimentAnalysis{
		Overall:          overall,
		PositiveMentions: positiveMentions,
		NegativeMentions: negativeMentions,
		PositivePercent:  posPercent,
		NeutralPercent:   neuPercent,
		NegativePercent:  100 - posPercent - neuPercent,
	}
}

func (a *Analyzer) recurringThemes(reviews []models.Review) []Theme {
	themes := []Theme{}

	for _, def := range themeDefinitions {
		var count, positive, negative int
		for _, r := range reviews {
			comment := strings.ToLower(r.Comment)
			matched := false
			for _, kw := range def.keywords {
				if strings.Contains(comment, kw) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			count++
			if r.Rating >= 4 {
				positive++
			} else if r.Rating <= 2 {
				negative++
			}
		}
		if count == 0 {
			continue
		}

		sentiment := "mixed"
		if positive > negative {
			sentiment = "positive"
		} else if negative > positive {
			sentiment = "negative"
		}
		themes = append(themes, Theme{Theme: def.name, MentionCount: count, Sentiment: sentiment})
	}

	// Stable sort keeps the fixed definition order on ties.
	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].MentionCount > themes[j].MentionCount
	})
	if len(themes) > a.config.TopThemeCount {
		themes = themes[:a.config.TopThemeCount]
	}
	return themes
}

type issueCount struct {
	issue string
	count int
}

// extractIssues tallies issue indicators found in low-rated reviews (3 stars
// and under), most frequent first.
func extractIssues(reviews []models.Review) ([]issueCount, map[string]string) {
	counts := make(map[string]int)
	advice := make(map[string]string)
	var order []string

	for _, r := range reviews {
		if r.Rating > 3 {
			continue
		}
		comment := strings.ToLower(r.Comment)
		for _, def := range issueDefinitions {
			if !strings.Contains(comment, def.keyword) {
				continue
			}
			if _, seen := counts[def.issue]; !seen {
				order = append(order, def.issue)
				advice[def.issue] = def.advice
			}
			counts[def.issue]++
		}
	}

	issues := make([]issueCount, 0, len(order))
	for _, issue := range order {
		issues = append(issues, issueCount{issue: issue, count: counts[issue]})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].count > issues[j].count
	})
	return issues, advice
}

// extractPraise tallies praised aspects found in high-rated reviews (4 stars
// and up), most frequent first.
func extractPraise(reviews []models.Review) []issueCount {
	counts := make(map[string]int)
	var order []string

	for _, r := range reviews {
		if r.Rating < 4 {
			continue
		}
		comment := strings.ToLower(r.Comment)
		for _, def := range praiseDefinitions {
			if !strings.Contains(comment, def.keyword) {
				continue
			}
			if _, seen := counts[def.praise]; !seen {
				order = append(order, def.praise)
			}
			counts[def.praise]++
		}
	}

	praise := make([]issueCount, 0, len(order))
	for _, p := range order {
		praise = append(praise, issueCount{issue: p, count: counts[p]})
	}
	sort.SliceStable(praise, func(i, j int) bool {
		return praise[i].count > praise[j].count
	})
	return praise
}

func (a *Analyzer) buildAdvice(level string, issues []issueCount, adviceByIssue map[string]string, praise []issueCount) (insights, recommendations []string) {
	insights = []string{}
	recommendations = []string{}

	if level == SatisfactionSatisfied {
		insights = append(insights, "Customers are highly satisfied with this listing")
		if tops := topNames(praise, 3); len(tops) > 0 {
			insights = append(insights, fmt.Sprintf("Most praised aspects: %s", strings.Join(tops, ", ")))
		}
		recommendations = append(recommendations,
			"Continue maintaining your high standards",
			"Consider raising prices given the positive feedback",
			"Encourage guests to share their positive experiences")
		return insights, recommendations
	}

	if tops := topNames(issues, 3); len(tops) > 0 {
		insights = append(insights, fmt.Sprintf("Main issues identified: %s", strings.Join(tops, ", ")))
	}
	if tops := topNames(praise, 2); len(tops) > 0 {
		insights = append(insights, fmt.Sprintf("Positive aspects to maintain: %s", strings.Join(tops, ", ")))
	}

	limit := len(issues)
	if limit > 5 {
		limit = 5
	}
	for _, item := range issues[:limit] {
		recommendations = append(recommendations, fmt.Sprintf(adviceByIssue[item.issue], item.count))
	}

	if len(recommendations) == 0 {
		switch level {
		case SatisfactionNeutral:
			recommendations = append(recommendations,
				"Respond to guest feedback and ask for specific improvement suggestions",
				"Small touches like welcome snacks can improve ratings")
		case SatisfactionDissatisfied:
			recommendations = append(recommendations,
				"Reach out to recent guests to understand their concerns",
				"Consider pausing bookings until issues are resolved")
		}
	}

	return insights, recommendations
}

func (a *Analyzer) buildSummary(total int, avgRating float64, level string, issues, praise []issueCount, recommendations []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on %d reviews with an average rating of %.1f/5.0, ", total, avgRating)
	fmt.Fprintf(&b, "the overall satisfaction is %s. ", level)

	if tops := topNames(issues, 3); len(tops) > 0 {
		fmt.Fprintf(&b, "Key issues found: %s. ", strings.Join(tops, ", "))
	}
	if tops := topNames(praise, 2); len(tops) > 0 {
		fmt.Fprintf(&b, "Guests appreciate: %s. ", strings.Join(tops, ", "))
	}
	if len(recommendations) > 0 {
		action := recommendations[0]
		if idx := strings.Index(action, " - "); idx >= 0 {
			action = action[:idx]
		}
		fmt.Fprintf(&b, "Priority action: %s", action)
	}
	return b.String()
}

func topNames(items []issueCount, limit int) []string {
	if limit > len(items) {
		limit = len(items)
	}
	names := make([]string, 0, limit)
	for _, item := range items[:limit] {
		names = append(names, item.issue)
	}
	return names
}

func roundPercent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
