package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwforge/dwforge/internal/db"
	"github.com/dwforge/dwforge/internal/logging"
	"github.com/dwforge/dwforge/internal/warehouse"
)

var verifyAllowViolations bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run referential integrity checks against a loaded warehouse",
	Long: `Anti-join the fact table against every dimension in an already loaded
warehouse and report the violation count per foreign key. Mandatory
keys (customer, product, seller, purchase date) are checked on every
row; optional event date keys only where non-null.

Example:
  dwforge verify --warehouse $DWH_DSN`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyAllowViolations, "allow-violations", false,
		"exit zero even when referential integrity violations are found")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateVerify(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse database: %w", err)
	}
	defer pool.Close()

	runID := newRunID()
	log := logging.ForRun(runID)

	results, err := warehouse.Verify(ctx, warehouse.NewPGStore(pool), log)
	if err != nil {
		return err
	}

	var total int64
	cmd.Println()
	for _, r := range results {
		status := "ok"
		if r.Violations > 0 {
			status = fmt.Sprintf("%d violations", r.Violations)
			total += r.Violations
		}
		cmd.Printf("  %-22s -> %-14s %s\n", r.ForeignKey, r.Dimension, status)
	}
	cmd.Println()

	if total == 0 {
		cmd.Println("Integrity checks passed.")
		return nil
	}

	cmd.Printf("Integrity checks found %d violations.\n", total)
	if verifyAllowViolations {
		return nil
	}
	return fmt.Errorf("referential integrity check found %d violations", total)
}
