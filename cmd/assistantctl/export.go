package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a sales report workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("period", "this month", "reporting period, e.g. today, this week, last month")
	exportCmd.Flags().StringP("out", "o", "", "output file (defaults to the generated filename)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	period, _ := cmd.Flags().GetString("period")
	out, _ := cmd.Flags().GetString("out")

	return withServices(cmd.Context(), func(svc services) error {
		data, filename, err := svc.Assistant.ExportSales(cmd.Context(), period)
		if err != nil {
			return err
		}
		if out == "" {
			out = filename
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
		return nil
	})
}
