package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwforge/dwforge/internal/datagen"
	"github.com/dwforge/dwforge/internal/db"
	"github.com/dwforge/dwforge/internal/logging"
)

var (
	seedOrders       int
	seedRandomSeed   uint64
	seedDropExisting bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic source dataset for testing the transform",
	Long: `Create the source schema in the source database and fill it with a
coherent synthetic e-commerce dataset: customers, products, sellers,
orders with realistic status and timestamp progressions, order lines,
payments and reviews.

Example:
  dwforge seed --source $SRC_DSN --orders 50000
  dwforge seed --source $SRC_DSN --random-seed 42 --drop-existing`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0,
		"number of orders to generate")
	seedCmd.Flags().Uint64Var(&seedRandomSeed, "random-seed", 0,
		"random seed for reproducible generation (0 = random)")
	seedCmd.Flags().BoolVar(&seedDropExisting, "drop-existing", false,
		"drop the source schema before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedOrders > 0 {
		cfg.Seed.Orders = seedOrders
	}
	if seedRandomSeed != 0 {
		cfg.Seed.RandomSeed = seedRandomSeed
	}
	if seedDropExisting {
		cfg.Seed.DropExisting = true
	}

	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer pool.Close()

	if cfg.Seed.DropExisting {
		logging.Info().Msg("Dropping existing source schema")
		if err := datagen.DropSourceSchema(ctx, pool); err != nil {
			return err
		}
	}

	seeder := datagen.NewSeeder(logging.ForRun(newRunID()), datagen.Config{
		Orders: cfg.Seed.Orders,
		Seed:   cfg.Seed.RandomSeed,
	})
	if err := seeder.Run(ctx, pool); err != nil {
		return err
	}

	cmd.Printf("Seeded %d orders into the source database.\n", cfg.Seed.Orders)
	return nil
}
