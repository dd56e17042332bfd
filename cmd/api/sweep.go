package main

import (
	"fmt"
	"time"

	"github.com/sangkips/invoicely-api/internal/application/service"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/infrastructure/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Mark past-due invoices as overdue",
	Long: `Mark pending and partially paid invoices whose due date is before the
cut-off date as overdue. Invoices changed while the sweep runs are skipped and
picked up by the next run.`,
	Example: `  # Sweep as of today
  invoicely-api sweep-overdue

  # Sweep as of a specific date
  invoicely-api sweep-overdue --as-of 2024-06-30`,
	RunE: runSweep,
}

var purgeKeysCmd = &cobra.Command{
	Use:   "purge-idempotency-keys",
	Short: "Delete expired idempotency keys",
	RunE:  runPurgeKeys,
}

func init() {
	sweepCmd.Flags().String("as-of", "", "Cut-off date (format: YYYY-MM-DD, default: today)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	asOfStr, _ := cmd.Flags().GetString("as-of")

	asOf := entity.NewDate(time.Now())
	if asOfStr != "" {
		parsed, err := entity.ParseDate(asOfStr)
		if err != nil {
			return fmt.Errorf("invalid --as-of date %q, expected YYYY-MM-DD", asOfStr)
		}
		asOf = parsed
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	invoiceService := service.NewInvoiceService(
		repository.NewInvoiceRepository(a.db),
		repository.NewClientRepository(a.db),
		repository.NewSettingsRepository(a.db),
		a.metrics,
	)

	result, err := invoiceService.SweepOverdue(cmd.Context(), asOf)
	if err != nil {
		a.log.Error("overdue sweep failed", zap.Error(err))
		return err
	}

	a.log.Info("overdue sweep completed",
		zap.String("as_of", asOf.String()),
		zap.Int("checked", result.Checked),
		zap.Int("marked", result.Marked),
		zap.Int("skipped", result.Skipped),
	)
	return nil
}

func runPurgeKeys(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	deleted, err := repository.NewIdempotencyRepository(a.db).DeleteExpired(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	a.log.Info("expired idempotency keys purged", zap.Int64("deleted", deleted))
	return nil
}
