package decision

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scale is an inclusive integer range for a self-reported value.
type Scale struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (s Scale) contains(v int) bool {
	return v >= s.Min && v <= s.Max
}

// SafetyRules holds the check-in classifier thresholds.
type SafetyRules struct {
	Energy     Scale `yaml:"energy" json:"energy"`
	Pain       Scale `yaml:"pain" json:"pain"`
	Confidence Scale `yaml:"confidence" json:"confidence"`

	// RED when energy is at the bottom of its scale and pain is at least this.
	RedPainAtOrAbove int `yaml:"red_pain_at_or_above" json:"redPainAtOrAbove"`
	// YELLOW when energy is strictly below this.
	YellowEnergyBelow int `yaml:"yellow_energy_below" json:"yellowEnergyBelow"`
	// YELLOW when confidence is strictly below this.
	YellowConfidenceBelow int `yaml:"yellow_confidence_below" json:"yellowConfidenceBelow"`

	// Status reported when no check-in exists. Never GREEN.
	MissingCheckInStatus SafetyStatus `yaml:"missing_checkin_status" json:"missingCheckInStatus"`
}

// MarkerWeight configures one marker's share of the capacity score.
type MarkerWeight struct {
	Weight    float64 `yaml:"weight" json:"weight"`
	RepTarget int     `yaml:"rep_target" json:"repTarget"`
}

// CapacityRules holds the capacity scorer weights and bands.
type CapacityRules struct {
	RatingWeight          float64                    `yaml:"rating_weight" json:"ratingWeight"`
	RepsWeight            float64                    `yaml:"reps_weight" json:"repsWeight"`
	Markers               map[MarkerKey]MarkerWeight `yaml:"markers" json:"markers"`
	HighBandAtOrAbove     float64                    `yaml:"high_band_at_or_above" json:"highBandAtOrAbove"`
	MedBandAtOrAbove      float64                    `yaml:"med_band_at_or_above" json:"medBandAtOrAbove"`
	InsufficientDataScore float64                    `yaml:"insufficient_data_score" json:"insufficientDataScore"`
}

// PlanRules holds the composer thresholds.
type PlanRules struct {
	AdvanceAtOrAbove float64 `yaml:"advance_at_or_above" json:"advanceAtOrAbove"`
	YellowStepDown   int     `yaml:"yellow_step_down" json:"yellowStepDown"`

	LowerBodyRepsAtOrBelow           int `yaml:"lower_body_reps_at_or_below" json:"lowerBodyRepsAtOrBelow"`
	StrengthProgressionRepsAtOrAbove int `yaml:"strength_progression_reps_at_or_above" json:"strengthProgressionRepsAtOrAbove"`
}

// AdaptiveRules holds the longitudinal workflow windows.
type AdaptiveRules struct {
	ReturnAfterBreakDays int `yaml:"return_after_break_days" json:"returnAfterBreakDays"`
	WeekWindowDays       int `yaml:"week_window_days" json:"weekWindowDays"`
}

// Rules is the full, named threshold set used by the engine. It is a value
// type and safe to share between goroutines once built.
type Rules struct {
	Safety   SafetyRules   `yaml:"safety" json:"safety"`
	Capacity CapacityRules `yaml:"capacity" json:"capacity"`
	Plan     PlanRules     `yaml:"plan" json:"plan"`
	Adaptive AdaptiveRules `yaml:"adaptive" json:"adaptive"`
}

// DefaultRules returns placeholder thresholds pending clinical review.
func DefaultRules() Rules {
	return Rules{
		Safety: SafetyRules{
			Energy:                Scale{Min: 1, Max: 5},
			Pain:                  Scale{Min: 0, Max: 5},
			Confidence:            Scale{Min: 1, Max: 5},
			RedPainAtOrAbove:      5,
			YellowEnergyBelow:     3,
			YellowConfidenceBelow: 2,
			MissingCheckInStatus:  SafetyYellow,
		},
		Capacity: CapacityRules{
			RatingWeight: 0.6,
			RepsWeight:   0.4,
			Markers: map[MarkerKey]MarkerWeight{
				MarkerSitToStand:     {Weight: 0.4, RepTarget: 10},
				MarkerSupportedMarch: {Weight: 0.3, RepTarget: 20},
				MarkerShoulderRaise:  {Weight: 0.3, RepTarget: 10},
			},
			HighBandAtOrAbove:     70,
			MedBandAtOrAbove:      40,
			InsufficientDataScore: -1,
		},
		Plan: PlanRules{
			AdvanceAtOrAbove:                 75,
			YellowStepDown:                   1,
			LowerBodyRepsAtOrBelow:           2,
			StrengthProgressionRepsAtOrAbove: 5,
		},
		Adaptive: AdaptiveRules{
			ReturnAfterBreakDays: 7,
			WeekWindowDays:       7,
		},
	}
}

// LoadRules reads a YAML rules file and overlays it on DefaultRules.
// An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML over DefaultRules and validates the result.
// Entries under capacity.markers overlay the default entry for the same
// marker field by field, so a file may tune a weight alone.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("%w: decode rules: %v", ErrInvalidInput, err)
	}

	var overlay struct {
		Capacity struct {
			Markers map[MarkerKey]yaml.Node `yaml:"markers"`
		} `yaml:"capacity"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Rules{}, fmt.Errorf("%w: decode rules: %v", ErrInvalidInput, err)
	}
	defaults := DefaultRules().Capacity.Markers
	for key, node := range overlay.Capacity.Markers {
		w := defaults[key]
		if err := node.Decode(&w); err != nil {
			return Rules{}, fmt.Errorf("%w: decode capacity.markers.%s: %v", ErrInvalidInput, key, err)
		}
		rules.Capacity.Markers[key] = w
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// YAML renders the rules in the same shape ParseRules accepts.
func (r Rules) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Validate reports every inconsistent threshold at once.
func (r Rules) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...))
	}

	s := r.Safety
	scales := []struct {
		name  string
		scale Scale
	}{{"energy", s.Energy}, {"pain", s.Pain}, {"confidence", s.Confidence}}
	for _, sc := range scales {
		if sc.scale.Min >= sc.scale.Max {
			fail("safety.%s scale min %d must be below max %d", sc.name, sc.scale.Min, sc.scale.Max)
		}
	}
	if !s.Pain.contains(s.RedPainAtOrAbove) {
		fail("safety.red_pain_at_or_above %d outside pain scale", s.RedPainAtOrAbove)
	}
	if s.YellowEnergyBelow <= s.Energy.Min || s.YellowEnergyBelow > s.Energy.Max {
		fail("safety.yellow_energy_below %d outside energy scale", s.YellowEnergyBelow)
	}
	if s.YellowConfidenceBelow <= s.Confidence.Min || s.YellowConfidenceBelow > s.Confidence.Max {
		fail("safety.yellow_confidence_below %d outside confidence scale", s.YellowConfidenceBelow)
	}
	switch s.MissingCheckInStatus {
	case SafetyYellow, SafetyRed:
	default:
		fail("safety.missing_checkin_status must be YELLOW or RED, got %q", s.MissingCheckInStatus)
	}

	c := r.Capacity
	if c.RatingWeight < 0 || c.RepsWeight < 0 || c.RatingWeight+c.RepsWeight <= 0 {
		fail("capacity rating/reps weights must be non-negative and not both zero")
	}
	keys := make([]string, 0, len(c.Markers))
	for key := range c.Markers {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	for _, raw := range keys {
		key := MarkerKey(raw)
		w := c.Markers[key]
		if parsed, err := ParseMarkerKey(raw); err != nil || parsed != key {
			fail("capacity.markers: unknown marker %q", raw)
			continue
		}
		if w.Weight <= 0 {
			fail("capacity.markers.%s weight must be positive", key)
		}
		if w.RepTarget <= 0 {
			fail("capacity.markers.%s rep_target must be positive", key)
		}
	}
	for _, key := range MarkerKeys() {
		if _, ok := c.Markers[key]; !ok {
			fail("capacity.markers.%s missing", key)
		}
	}
	if c.MedBandAtOrAbove < 0 || c.MedBandAtOrAbove > c.HighBandAtOrAbove || c.HighBandAtOrAbove > 100 {
		fail("capacity bands must satisfy 0 <= med <= high <= 100")
	}
	if c.InsufficientDataScore >= 0 {
		fail("capacity.insufficient_data_score must be negative")
	}

	p := r.Plan
	if p.AdvanceAtOrAbove <= 0 || p.AdvanceAtOrAbove > 100 {
		fail("plan.advance_at_or_above must be in (0, 100]")
	}
	if p.YellowStepDown < 1 {
		fail("plan.yellow_step_down must be at least 1")
	}
	if p.LowerBodyRepsAtOrBelow < 0 || p.StrengthProgressionRepsAtOrAbove <= p.LowerBodyRepsAtOrBelow {
		fail("plan marker rep thresholds must satisfy 0 <= lower_body < strength_progression")
	}

	if r.Adaptive.ReturnAfterBreakDays < 1 {
		fail("adaptive.return_after_break_days must be at least 1")
	}
	if r.Adaptive.WeekWindowDays < 1 {
		fail("adaptive.week_window_days must be at least 1")
	}

	return errors.Join(errs...)
}

// ValidateCheckIn rejects values outside the configured scales.
func (r Rules) ValidateCheckIn(c CheckIn) error {
	s := r.Safety
	switch {
	case !s.Energy.contains(c.Energy):
		return fmt.Errorf("%w: energy %d outside %d..%d", ErrInvalidInput, c.Energy, s.Energy.Min, s.Energy.Max)
	case !s.Pain.contains(c.Pain):
		return fmt.Errorf("%w: pain %d outside %d..%d", ErrInvalidInput, c.Pain, s.Pain.Min, s.Pain.Max)
	case !s.Confidence.contains(c.Confidence):
		return fmt.Errorf("%w: confidence %d outside %d..%d", ErrInvalidInput, c.Confidence, s.Confidence.Min, s.Confidence.Max)
	}
	return nil
}
