package decision

import (
	"errors"
	"reflect"
	"testing"
)

func TestClassifySafetyRedFlagAlwaysRed(t *testing.T) {
	rules := DefaultRules()
	for energy := 1; energy <= 5; energy++ {
		for pain := 0; pain <= 5; pain++ {
			got, err := rules.ClassifySafety(&CheckIn{
				Energy:     energy,
				Pain:       pain,
				Confidence: 5,
				RedFlags:   []string{"CHEST_PAIN"},
			})
			if err != nil {
				t.Fatalf("energy=%d pain=%d: unexpected error %v", energy, pain, err)
			}
			if got.Status != SafetyRed {
				t.Fatalf("energy=%d pain=%d: expected RED, got %s", energy, pain, got.Status)
			}
			if got.Triggers[0] != ConstraintRedFlagOverride {
				t.Fatalf("expected red flag trigger first, got %v", got.Triggers)
			}
		}
	}
}

func TestClassifySafetyGreenWhenNothingFires(t *testing.T) {
	rules := DefaultRules()
	for energy := rules.Safety.YellowEnergyBelow; energy <= rules.Safety.Energy.Max; energy++ {
		for confidence := rules.Safety.YellowConfidenceBelow; confidence <= rules.Safety.Confidence.Max; confidence++ {
			for pain := rules.Safety.Pain.Min; pain <= rules.Safety.Pain.Max; pain++ {
				got, err := rules.ClassifySafety(&CheckIn{Energy: energy, Pain: pain, Confidence: confidence})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Status != SafetyGreen {
					t.Fatalf("energy=%d pain=%d confidence=%d: expected GREEN, got %s %v", energy, pain, confidence, got.Status, got.Triggers)
				}
				if len(got.Triggers) != 0 {
					t.Fatalf("expected no triggers, got %v", got.Triggers)
				}
			}
		}
	}
}

func TestClassifySafetyTiers(t *testing.T) {
	cases := []struct {
		name     string
		checkIn  CheckIn
		status   SafetyStatus
		triggers []string
	}{
		{
			name:     "exhaustion with high pain",
			checkIn:  CheckIn{Energy: 1, Pain: 5, Confidence: 3},
			status:   SafetyRed,
			triggers: []string{ConstraintExhaustionPain},
		},
		{
			name:     "red flag and exhaustion both recorded",
			checkIn:  CheckIn{Energy: 1, Pain: 5, Confidence: 3, RedFlags: []string{"FAINTING"}},
			status:   SafetyRed,
			triggers: []string{ConstraintRedFlagOverride, ConstraintExhaustionPain},
		},
		{
			name:     "low energy",
			checkIn:  CheckIn{Energy: 2, Pain: 0, Confidence: 4},
			status:   SafetyYellow,
			triggers: []string{ConstraintLowEnergy},
		},
		{
			name:     "side effect only",
			checkIn:  CheckIn{Energy: 4, Pain: 1, Confidence: 4, SideEffects: []string{"nausea"}},
			status:   SafetyYellow,
			triggers: []string{ConstraintSideEffect},
		},
		{
			name:     "low confidence",
			checkIn:  CheckIn{Energy: 4, Pain: 1, Confidence: 1},
			status:   SafetyYellow,
			triggers: []string{ConstraintLowConfidence},
		},
		{
			name:     "energy at bottom with moderate pain stays yellow",
			checkIn:  CheckIn{Energy: 1, Pain: 4, Confidence: 3, SideEffects: []string{"nausea"}},
			status:   SafetyYellow,
			triggers: []string{ConstraintLowEnergy, ConstraintSideEffect},
		},
		{
			name:     "blank tags are ignored",
			checkIn:  CheckIn{Energy: 4, Pain: 1, Confidence: 4, SideEffects: []string{"  "}, RedFlags: []string{""}},
			status:   SafetyGreen,
			triggers: []string{},
		},
	}

	rules := DefaultRules()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rules.ClassifySafety(&tc.checkIn)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tc.status {
				t.Fatalf("expected %s, got %s", tc.status, got.Status)
			}
			if !reflect.DeepEqual(got.Triggers, tc.triggers) {
				t.Fatalf("expected triggers %v, got %v", tc.triggers, got.Triggers)
			}
		})
	}
}

func TestClassifySafetyMissingCheckInIsNotGreen(t *testing.T) {
	rules := DefaultRules()
	got, err := rules.ClassifySafety(nil)
	if !errors.Is(err, ErrMissingSafetyInput) {
		t.Fatalf("expected ErrMissingSafetyInput, got %v", err)
	}
	if got.Status == SafetyGreen {
		t.Fatalf("missing check-in must not be GREEN")
	}
	if got.Status != rules.Safety.MissingCheckInStatus {
		t.Fatalf("expected configured default %s, got %s", rules.Safety.MissingCheckInStatus, got.Status)
	}
}

func TestClassifySafetyRejectsOutOfRange(t *testing.T) {
	rules := DefaultRules()
	cases := []CheckIn{
		{Energy: 0, Pain: 1, Confidence: 3},
		{Energy: 6, Pain: 1, Confidence: 3},
		{Energy: 3, Pain: -1, Confidence: 3},
		{Energy: 3, Pain: 6, Confidence: 3},
		{Energy: 3, Pain: 1, Confidence: 0},
	}
	for _, c := range cases {
		c := c
		if _, err := rules.ClassifySafety(&c); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestReadinessScore(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		checkIn CheckIn
		want    int
	}{
		{CheckIn{Energy: 5, Pain: 0, Confidence: 5}, 100},
		{CheckIn{Energy: 1, Pain: 5, Confidence: 1}, 0},
		{CheckIn{Energy: 3, Pain: 0, Confidence: 3}, 60},
	}
	for _, tc := range cases {
		got, err := rules.ClassifySafety(&tc.checkIn)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ReadinessScore != tc.want {
			t.Fatalf("%+v: expected readiness %d, got %d", tc.checkIn, tc.want, got.ReadinessScore)
		}
	}
}
