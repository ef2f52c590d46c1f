package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

// fixture is one user-day of engine input. YAML fixtures use snake_case
// keys; a JSON object uses the camelCase keys the API speaks.
type fixture struct {
	Screening *decision.ParqResult    `json:"screening" yaml:"screening"`
	CheckIn   *decision.CheckIn       `json:"checkin" yaml:"checkin"`
	Markers   []decision.MarkerResult `json:"markers" yaml:"markers"`
	State     *decision.AdaptiveState `json:"state" yaml:"state"`
	Base      string                  `json:"base" yaml:"base"`
	Now       *time.Time              `json:"now" yaml:"now"`
}

type evaluateOutput struct {
	Screen    decision.AdaptiveScreen   `json:"screen"`
	Clearance decision.Clearance        `json:"clearance"`
	Plan      *decision.TodayPlanOutput `json:"plan,omitempty"`
	Summary   *decision.Summary         `json:"summary,omitempty"`
	Capacity  *decision.CapacityResult  `json:"capacity,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

var inputFile string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compose today's plan for a fixture",
	Long: `Reads a YAML or JSON fixture with screening, checkin, markers, state and
base keys, runs the full pipeline and prints the plan, summary and adaptive screen.
A blocked plan is still printed with its screen and the reason.`,
	RunE: runEvaluate,
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Resolve the adaptive screen for a fixture",
	RunE:  runScreen,
}

func init() {
	evaluateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "fixture file")
	_ = evaluateCmd.MarkFlagRequired("input")
	screenCmd.Flags().StringVarP(&inputFile, "input", "i", "", "fixture file")
	_ = screenCmd.MarkFlagRequired("input")
}

func readFixture(path string) (fixture, error) {
	var fx fixture
	data, err := os.ReadFile(path)
	if err != nil {
		return fx, fmt.Errorf("read fixture: %w", err)
	}
	if err := decodeFixture(data, &fx); err != nil {
		return fx, fmt.Errorf("decode fixture: %w", err)
	}
	return fx, nil
}

// decodeFixture rejects unknown keys in both formats so a misspelled
// red flag field cannot silently drop out of the safety gate.
func decodeFixture(data []byte, fx *fixture) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		return dec.Decode(fx)
	}
	dec := yaml.NewDecoder(bytes.NewReader(trimmed))
	dec.KnownFields(true)
	if err := dec.Decode(fx); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func fixtureTime(fx fixture) (time.Time, error) {
	if nowFlag == "" && fx.Now != nil {
		return fx.Now.UTC(), nil
	}
	return evaluationTime()
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	fx, err := readFixture(inputFile)
	if err != nil {
		return err
	}
	now, err := fixtureTime(fx)
	if err != nil {
		return err
	}
	base := decision.VariantMain
	if fx.Base != "" {
		if base, err = decision.ParseVariant(fx.Base); err != nil {
			return err
		}
	}

	res, planErr := engine.Plan(decision.Inputs{
		Screening:   fx.Screening,
		CheckIn:     fx.CheckIn,
		Markers:     fx.Markers,
		State:       fx.State,
		BaseVariant: base,
		Now:         now,
	})
	out := evaluateOutput{Screen: res.Screen, Clearance: res.Clearance}
	if planErr != nil {
		out.Error = planErr.Error()
	} else {
		out.Plan = &res.Plan
		out.Summary = &res.Summary
		out.Capacity = &res.Capacity
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if planErr != nil {
		return errors.New("plan blocked")
	}
	return nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	fx, err := readFixture(inputFile)
	if err != nil {
		return err
	}
	now, err := fixtureTime(fx)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"screen": decision.ResolveAdaptiveScreen(fx.State, now),
	})
}
