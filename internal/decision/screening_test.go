package decision

import (
	"errors"
	"testing"
)

func TestEvaluateScreening(t *testing.T) {
	got, err := EvaluateScreening(&ParqResult{ParqRequired: true})
	if err != nil || got.Cleared {
		t.Fatalf("parqRequired=true: expected not cleared, got %+v err=%v", got, err)
	}

	got, err = EvaluateScreening(&ParqResult{ParqRequired: false, ParqAnswers: []string{"No"}})
	if err != nil || !got.Cleared {
		t.Fatalf("parqRequired=false: expected cleared, got %+v err=%v", got, err)
	}

	got, err = EvaluateScreening(nil)
	if !errors.Is(err, ErrMissingSafetyInput) {
		t.Fatalf("expected ErrMissingSafetyInput, got %v", err)
	}
	if got.Cleared {
		t.Fatalf("missing screening must never clear")
	}
}

func TestParqRequiredFromAnswers(t *testing.T) {
	cases := []struct {
		name    string
		flag    bool
		answers []string
		want    bool
	}{
		{name: "all no", answers: []string{"No", "No"}, want: false},
		{name: "one yes", answers: []string{"No", " yes "}, want: true},
		{name: "flag set", flag: true, answers: nil, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParqRequiredFromAnswers(tc.flag, tc.answers); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMedicalClearanceRecommended(t *testing.T) {
	cases := []struct {
		name    string
		answers []string
		want    bool
	}{
		{name: "heart and chest pain", answers: []string{"Yes", "Yes", "No", "No"}, want: true},
		{name: "heart and dizziness", answers: []string{"Yes", "No", "No", "Yes"}, want: true},
		{name: "heart alone", answers: []string{"Yes", "No", "No", "No"}, want: false},
		{name: "three yes", answers: []string{"No", "Yes", "Yes", "Yes"}, want: true},
		{name: "two yes without heart", answers: []string{"No", "Yes", "No", "Yes"}, want: false},
		{name: "short answer list", answers: []string{"Yes"}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MedicalClearanceRecommended(tc.answers); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
