package decision

import (
	"math"
	"sort"
	"strings"
)

// MarkerScore is the per-marker view kept by the scorer.
type MarkerScore struct {
	Rating          string  `json:"rating,omitempty"`
	ComfortableReps *int    `json:"comfortableReps,omitempty"`
	Side            string  `json:"side,omitempty"`
	Score           float64 `json:"score"`
}

// CapacityResult is the scorer output. When no marker carries usable data,
// CapacityScore is the configured insufficient-data sentinel and PerMarker is empty.
type CapacityResult struct {
	CapacityScore    float64                   `json:"capacityScore"`
	Band             CapacityBand              `json:"band"`
	InsufficientData bool                      `json:"insufficientData"`
	PerMarker        map[MarkerKey]MarkerScore `json:"perMarker"`
	Excluded         []string                  `json:"excluded,omitempty"`
}

// ScoreCapacity combines the latest marker results into a 0..100 score,
// normalising over the markers that are present. Keys outside the closed set
// are listed in Excluded and otherwise ignored.
func (r Rules) ScoreCapacity(latest map[MarkerKey]MarkerResult) CapacityResult {
	result := CapacityResult{PerMarker: map[MarkerKey]MarkerScore{}}

	for key := range latest {
		if parsed, err := ParseMarkerKey(string(key)); err != nil || parsed != key {
			result.Excluded = append(result.Excluded, string(key))
		}
	}
	sort.Strings(result.Excluded)

	var weighted, total float64
	for _, key := range MarkerKeys() {
		marker, ok := latest[key]
		if !ok {
			continue
		}
		score, ok := r.markerScore(key, marker)
		if !ok {
			continue
		}
		w := r.Capacity.Markers[key].Weight
		weighted += w * score
		total += w
		result.PerMarker[key] = MarkerScore{
			Rating:          marker.Rating,
			ComfortableReps: copyInt(marker.ComfortableReps),
			Side:            marker.Side,
			Score:           roundTo(score, 3),
		}
	}

	if total <= 0 {
		result.CapacityScore = r.Capacity.InsufficientDataScore
		result.Band = BandUnknown
		result.InsufficientData = true
		return result
	}

	result.CapacityScore = roundTo(100*weighted/total, 1)
	result.Band = r.band(result.CapacityScore)
	return result
}

// markerScore returns a 0..1 score from the rating and rep components that
// are present, reweighting when one is missing. ok is false when neither is usable.
func (r Rules) markerScore(key MarkerKey, m MarkerResult) (float64, bool) {
	cfg := r.Capacity.Markers[key]
	var sum, weight float64
	if v, ok := ratingValue(m.Rating); ok && r.Capacity.RatingWeight > 0 {
		sum += r.Capacity.RatingWeight * v
		weight += r.Capacity.RatingWeight
	}
	if m.ComfortableReps != nil && *m.ComfortableReps >= 0 && cfg.RepTarget > 0 && r.Capacity.RepsWeight > 0 {
		v := math.Min(float64(*m.ComfortableReps)/float64(cfg.RepTarget), 1)
		sum += r.Capacity.RepsWeight * v
		weight += r.Capacity.RepsWeight
	}
	if weight == 0 {
		return 0, false
	}
	return sum / weight, true
}

func (r Rules) band(score float64) CapacityBand {
	switch {
	case score >= r.Capacity.HighBandAtOrAbove:
		return BandHigh
	case score >= r.Capacity.MedBandAtOrAbove:
		return BandMed
	default:
		return BandLow
	}
}

// ratingValue maps both the low/moderate/high and hard/ok/easy vocabularies.
func ratingValue(raw string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "easy":
		return 1, true
	case "moderate", "medium", "ok":
		return 0.5, true
	case "low", "hard":
		return 0, true
	default:
		return 0, false
	}
}

func isHardRating(raw string) bool {
	v, ok := ratingValue(raw)
	return ok && v == 0
}

func isEasyRating(raw string) bool {
	v, ok := ratingValue(raw)
	return ok && v == 1
}

// LatestMarkers keeps the most recent result per recognised key, ordered by
// AssessedAt then CreatedAt. Results with unknown keys are dropped.
func LatestMarkers(results []MarkerResult) map[MarkerKey]MarkerResult {
	latest := make(map[MarkerKey]MarkerResult, len(MarkerKeys()))
	for _, m := range results {
		key, err := ParseMarkerKey(string(m.Key))
		if err != nil {
			continue
		}
		m.Key = key
		current, ok := latest[key]
		if !ok || newerMarker(m, current) {
			latest[key] = m
		}
	}
	return latest
}

func newerMarker(a, b MarkerResult) bool {
	if !a.AssessedAt.Equal(b.AssessedAt) {
		return a.AssessedAt.After(b.AssessedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
