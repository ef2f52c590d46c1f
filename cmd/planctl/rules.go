package main

import (
	"github.com/spf13/cobra"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rules as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := decision.LoadRules(rulesFile)
		if err != nil {
			return err
		}
		data, err := rules.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
