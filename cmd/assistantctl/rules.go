package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and run automation rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured automation rules",
	RunE:  runRulesList,
}

var rulesRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one automation pass against the store",
	RunE:  runRulesRun,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesRunCmd)
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	return withServices(cmd.Context(), func(svc services) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTRIGGER\tENABLED\tACTIONS")
		for _, r := range svc.Automation.ListRules(cmd.Context()) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\n", r.ID, r.Name, r.Trigger, r.Enabled, len(r.Actions))
		}
		return w.Flush()
	})
}

func runRulesRun(cmd *cobra.Command, _ []string) error {
	return withServices(cmd.Context(), func(svc services) error {
		result, err := svc.Automation.RunNow(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pass at %s: %d evaluated, %d fired, %d failed\n",
			result.StartedAt.Format(time.RFC3339), result.Evaluated, len(result.Fired), len(result.Failed))
		for _, id := range result.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", id)
		}
		return nil
	})
}
