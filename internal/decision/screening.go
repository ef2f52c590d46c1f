package decision

import "strings"

// Clearance is the outcome of the screening gate.
type Clearance struct {
	Cleared bool `json:"cleared"`
}

// EvaluateScreening clears a user only when a screening exists and does not
// require follow-up. A nil result is never cleared.
func EvaluateScreening(result *ParqResult) (Clearance, error) {
	if result == nil {
		return Clearance{Cleared: false}, ErrMissingSafetyInput
	}
	return Clearance{Cleared: !result.ParqRequired}, nil
}

// ParqRequiredFromAnswers folds the submitted flag with the answers: any
// "Yes" answer requires follow-up.
func ParqRequiredFromAnswers(flag bool, answers []string) bool {
	return flag || countYes(answers) > 0
}

// MedicalClearanceRecommended flags answer patterns that call for a
// clinician's sign-off: three or more "Yes" answers, or a heart condition
// (Q1) combined with chest pain (Q2, Q3) or dizziness (Q4).
func MedicalClearanceRecommended(answers []string) bool {
	if countYes(answers) >= 3 {
		return true
	}
	heart := answerIsYes(answers, 0)
	chestPain := answerIsYes(answers, 1) || answerIsYes(answers, 2)
	dizziness := answerIsYes(answers, 3)
	return heart && (chestPain || dizziness)
}

func countYes(answers []string) int {
	n := 0
	for i := range answers {
		if answerIsYes(answers, i) {
			n++
		}
	}
	return n
}

func answerIsYes(answers []string, idx int) bool {
	if idx < 0 || idx >= len(answers) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answers[idx]), "yes")
}
