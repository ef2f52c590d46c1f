package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Run the daily plan decision engine offline",
	Long: `planctl evaluates fixture files against the decision rules without a
database or HTTP server. It is meant for tuning thresholds and reviewing
what the engine decides for a given day.`,
	SilenceUsage: true,
}

var (
	rulesFile string
	nowFlag   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rules file overlaid on the defaults")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "evaluation time (RFC 3339); defaults to the current time")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(rulesCmd)
}

func loadEngine() (*decision.Engine, error) {
	rules, err := decision.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	return decision.NewEngine(rules)
}

func evaluationTime() (time.Time, error) {
	if strings.TrimSpace(nowFlag) == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, nowFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t.UTC(), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
