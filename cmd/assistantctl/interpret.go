package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionID string

var interpretCmd = &cobra.Command{
	Use:   "interpret <utterance>",
	Short: "Interpret and execute a command, e.g. \"add 20 units of usb cable\"",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInterpret,
}

var parseCmd = &cobra.Command{
	Use:   "parse <utterance>",
	Short: "Show how an utterance is classified without executing it",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	interpretCmd.Flags().StringVar(&sessionID, "session", "cli", "session id used to serialize commands")
	interpretCmd.Flags().Bool("json", false, "print the full interpretation as JSON")
}

func runInterpret(cmd *cobra.Command, args []string) error {
	utterance := strings.Join(args, " ")
	asJSON, _ := cmd.Flags().GetBool("json")

	return withServices(cmd.Context(), func(svc services) error {
		result := svc.Assistant.Interpret(cmd.Context(), sessionID, utterance)
		if asJSON {
			return printJSON(result)
		}
		if result.Command != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %.2f]\n", result.Command.Intent, result.Command.Confidence)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Response.Message)
		for _, s := range result.Response.FollowUpSuggestions {
			fmt.Fprintf(cmd.OutOrStdout(), "  → %s\n", s)
		}
		return nil
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	utterance := strings.Join(args, " ")
	return withServices(cmd.Context(), func(svc services) error {
		parsed := svc.Assistant.Parse(utterance)
		if parsed == nil {
			return fmt.Errorf("no intent matched %q", utterance)
		}
		return printJSON(parsed)
	})
}
