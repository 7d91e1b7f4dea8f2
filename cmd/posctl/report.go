package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"veredapos/internal/infra"
	"veredapos/internal/model"
	"veredapos/internal/service"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Offline reports",
}

var (
	closingDay      string
	closingOperator string
	closingOut      string
)

var reportClosingCmd = &cobra.Command{
	Use:   "closing",
	Short: "Shift closing of one day, as JSON or as a PDF when --out ends in .pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		var day time.Time
		if closingDay != "" {
			d, err := time.Parse(time.DateOnly, closingDay)
			if err != nil {
				return fmt.Errorf("--day: %w", err)
			}
			day = d
		}

		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		loc, err := s.cfg.Location()
		if err != nil {
			return err
		}
		sum := service.NewReportService(s.store, service.WithLocation(loc)).ShiftClosing(ctx, day, closingOperator)

		if closingOut == "" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		pdf, err := infra.NewRenderer().ShiftClosing(sum, s.store.Current().Settings)
		if err != nil {
			return err
		}
		if err := os.WriteFile(closingOut, pdf, 0o644); err != nil {
			return err
		}

		methods := make([]model.PaymentMethod, 0, len(sum.ByMethod))
		for m := range sum.ByMethod {
			methods = append(methods, m)
		}
		sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d orders, gross %s\n", sum.Day.Format(time.DateOnly), sum.Count, sum.Gross.StringFixed(2))
		for _, m := range methods {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", m, sum.ByMethod[m].StringFixed(2))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "written to %s\n", closingOut)
		return nil
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Invoice ledger maintenance",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute the closure hash chain of every invoice series",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		br := service.NewReportService(s.store, service.WithInvoicePrefix(s.cfg.InvoicePrefix)).VerifyLedger(ctx)
		if br != nil {
			return fmt.Errorf("ledger broken in series %s at %s: %s", br.Series, br.InvoiceNumber, br.Reason)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ledger ok")
		return nil
	},
}

func init() {
	reportClosingCmd.Flags().StringVar(&closingDay, "day", "", "day to close, YYYY-MM-DD (default today in TIMEZONE)")
	reportClosingCmd.Flags().StringVar(&closingOperator, "operator", "posctl", "operator printed on the report")
	reportClosingCmd.Flags().StringVar(&closingOut, "out", "", "write a PDF to this file instead of printing JSON")
	reportCmd.AddCommand(reportClosingCmd)
	ledgerCmd.AddCommand(ledgerVerifyCmd)
}
