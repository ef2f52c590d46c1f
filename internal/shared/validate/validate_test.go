package validate

import (
	"errors"
	"testing"
)

type sample struct {
	Energy  *int     `json:"energy" validate:"required,gte=1,lte=5"`
	Side    string   `json:"side,omitempty" validate:"omitempty,oneof=LEFT RIGHT"`
	Answers []string `json:"answers" validate:"dive,required"`
}

func intPtr(v int) *int { return &v }

func TestStructOK(t *testing.T) {
	if err := Struct(sample{Energy: intPtr(3), Side: "LEFT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Energy: intPtr(9), Side: "UP", Answers: []string{"Yes", ""}})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %T %v", err, err)
	}
	want := map[string]string{
		"energy":     "must be at most 5",
		"side":       "must be one of [LEFT RIGHT]",
		"answers[1]": "is required",
	}
	for k, v := range want {
		if fe[k] != v {
			t.Fatalf("field %s: expected %q, got %q (all: %v)", k, v, fe[k], fe)
		}
	}
	if Fields(err)["energy"] == "" {
		t.Fatalf("Fields should expose the map")
	}
}

func TestStructMissingRequired(t *testing.T) {
	fields := Fields(Struct(sample{}))
	if fields["energy"] != "is required" {
		t.Fatalf("expected required energy, got %v", fields)
	}
}
