package scoring

import "math"

// Trend labels for Form.TrendDirection.
const (
	TrendHot    = "hot"
	TrendCold   = "cold"
	TrendStable = "stable"
)

const (
	maxTrendAdjustment    = 0.20
	trendLabelThreshold   = 0.05
	maxConsistencyPenalty = 0.15
	cvNoPenalty           = 0.2
	cvFullPenaltySpan     = 0.3
	minFormGames          = 3
)

// gameWeights weight the ten most recent games, most recent first.
var gameWeights = [...]float64{0.25, 0.18, 0.14, 0.11, 0.09, 0.07, 0.06, 0.05, 0.03, 0.02}

// Form summarises recent scoring momentum.
type Form struct {
	WeightedAverage   float64 `json:"weighted_average"`
	TrendFactor       float64 `json:"trend_factor"`
	TrendDirection    string  `json:"trend_direction"`
	ConsistencyFactor float64 `json:"consistency_factor"`
}

// Score is the form-adjusted expectation.
func (f Form) Score() float64 {
	return f.WeightedAverage * f.TrendFactor * f.ConsistencyFactor
}

// AnalyzeForm computes weighted average, trend and consistency for scores
// ordered most recent first.
func AnalyzeForm(scores []float64) Form {
	f := Form{TrendFactor: 1, TrendDirection: TrendStable, ConsistencyFactor: 1}
	if len(scores) == 0 {
		return f
	}
	f.WeightedAverage = weightedAverage(scores)
	f.TrendFactor, f.TrendDirection = trend(scores)
	f.ConsistencyFactor = consistency(scores)
	return f
}

func weightedAverage(scores []float64) float64 {
	n := min(len(scores), len(gameWeights))
	var wsum, total float64
	for i := 0; i < n; i++ {
		wsum += gameWeights[i]
		total += scores[i] * gameWeights[i]
	}
	return total / wsum
}

// trend fits a least-squares line through the games in chronological order
// and scales its slope relative to the mean, capped at ±20%.
func trend(scores []float64) (float64, string) {
	n := len(scores)
	if n < minFormGames {
		return 1, TrendStable
	}
	xMean := float64(n-1) / 2
	var yMean float64
	for _, s := range scores {
		yMean += s
	}
	yMean /= float64(n)
	if yMean == 0 {
		return 1, TrendStable
	}

	var num, den float64
	for i := 0; i < n; i++ {
		// scores[n-1] is the oldest game, x = 0
		y := scores[n-1-i]
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 1, TrendStable
	}

	adj := (num / den) / yMean * float64(n)
	adj = math.Max(-maxTrendAdjustment, math.Min(maxTrendAdjustment, adj))

	switch {
	case adj > trendLabelThreshold:
		return 1 + adj, TrendHot
	case adj < -trendLabelThreshold:
		return 1 + adj, TrendCold
	default:
		return 1 + adj, TrendStable
	}
}

// consistency penalises a high coefficient of variation, up to 15%.
func consistency(scores []float64) float64 {
	n := len(scores)
	if n < minFormGames {
		return 1
	}
	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= float64(n)
	if mean == 0 {
		return 1
	}

	var ss float64
	for _, s := range scores {
		ss += (s - mean) * (s - mean)
	}
	cv := math.Sqrt(ss/float64(n-1)) / mean
	if cv <= cvNoPenalty {
		return 1
	}
	frac := math.Min(1, (cv-cvNoPenalty)/cvFullPenaltySpan)
	return 1 - frac*maxConsistencyPenalty
}
