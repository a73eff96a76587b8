package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dwforge/dwforge/internal/config"
	"github.com/dwforge/dwforge/internal/db"
	"github.com/dwforge/dwforge/internal/logging"
	"github.com/dwforge/dwforge/internal/source"
	"github.com/dwforge/dwforge/internal/star/calendar"
	"github.com/dwforge/dwforge/internal/star/dims"
	"github.com/dwforge/dwforge/internal/star/fact"
	"github.com/dwforge/dwforge/internal/warehouse"
)

var (
	transformMarginYears     int
	transformRegionMapFile   string
	transformAllowViolations bool
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Build the star schema from the source dataset and load it",
	Long: `Read the cleaned operational dataset from the source database, build
the customer, product, seller and date dimensions and the order-line
fact table, and load everything into the warehouse in one transaction.

After the load commits, every fact foreign key is anti-joined against
its dimension. Violations are reported in the run summary and make the
command exit non-zero unless --allow-violations is set.

Example:
  dwforge transform --source $SRC_DSN --warehouse $DWH_DSN
  dwforge transform --region-map regions.yaml --allow-violations`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().IntVar(&transformMarginYears, "calendar-margin-years", -1,
		"years of calendar padding around the observed order date range")
	transformCmd.Flags().StringVar(&transformRegionMapFile, "region-map", "",
		"YAML file overriding the built-in state-to-region mapping")
	transformCmd.Flags().BoolVar(&transformAllowViolations, "allow-violations", false,
		"exit zero even when referential integrity violations are found")
}

func runTransform(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if transformMarginYears >= 0 {
		cfg.Transform.CalendarMarginYears = transformMarginYears
	}
	if transformRegionMapFile != "" {
		cfg.Transform.RegionMapFile = transformRegionMapFile
	}
	if transformAllowViolations {
		cfg.Transform.AllowViolations = true
	}

	if err := cfg.ValidateTransform(); err != nil {
		return err
	}

	runID := newRunID()
	log := logging.ForRun(runID)

	ctx, cancel := signalContext()
	defer cancel()

	log.Info().Msg("Starting transform run")

	srcPool, err := db.Connect(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer srcPool.Close()

	reader := source.NewPGReader(srcPool)

	var (
		customers    []source.Customer
		products     []source.Product
		sellers      []source.Seller
		orders       []source.Order
		items        []source.OrderItem
		payments     []source.Payment
		reviews      []source.Review
		translations []source.CategoryTranslation
	)

	// The eight source reads are independent, so run them concurrently on
	// the pool.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { customers, err = reader.Customers(gctx); return })
	g.Go(func() (err error) { products, err = reader.Products(gctx); return })
	g.Go(func() (err error) { sellers, err = reader.Sellers(gctx); return })
	g.Go(func() (err error) { orders, err = reader.Orders(gctx); return })
	g.Go(func() (err error) { items, err = reader.OrderItems(gctx); return })
	g.Go(func() (err error) { payments, err = reader.Payments(gctx); return })
	g.Go(func() (err error) { reviews, err = reader.Reviews(gctx); return })
	g.Go(func() (err error) { translations, err = reader.CategoryTranslations(gctx); return })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to read source dataset: %w", err)
	}

	log.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("sellers", len(sellers)).
		Int("orders", len(orders)).
		Int("order_items", len(items)).
		Msg("Read source dataset")

	opts := []dims.Option{}
	if cfg.Transform.RegionMapFile != "" {
		regions, err := config.LoadRegionMap(cfg.Transform.RegionMapFile)
		if err != nil {
			return err
		}
		opts = append(opts, dims.WithRegionMap(regions))
		log.Info().
			Str("file", cfg.Transform.RegionMapFile).
			Int("states", len(regions)).
			Msg("Using region map override")
	}
	builder := dims.NewBuilder(log, opts...)

	var (
		customerRows []dims.CustomerRow
		productRows  []dims.ProductRow
		sellerRows   []dims.SellerRow
		calendarRows []calendar.DateRow
	)

	// The three dimensions and the calendar only depend on the source
	// slices, so they build in parallel too.
	g, _ = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customerRows, _, err = builder.Customers(customers)
		return
	})
	g.Go(func() (err error) {
		productRows, _, err = builder.Products(products, translations)
		return
	})
	g.Go(func() (err error) {
		sellerRows, _, err = builder.Sellers(sellers)
		return
	})
	g.Go(func() error {
		min, max, err := calendar.RangeFromOrders(orders)
		if err != nil {
			return err
		}
		calendarRows, err = calendar.Generate(min, max, cfg.Transform.CalendarMarginYears)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to build dimensions: %w", err)
	}

	facts, stats, err := fact.NewBuilder(log).Build(ctx, fact.Input{
		Orders:   orders,
		Items:    items,
		Payments: payments,
		Reviews:  reviews,
	}, fact.Lookups{
		Customers: dims.CustomerKeys(customerRows),
		Products:  dims.ProductKeys(productRows),
		Sellers:   dims.SellerKeys(sellerRows),
		Dates:     calendar.KeySet(calendarRows),
	})
	if err != nil {
		return fmt.Errorf("failed to build fact table: %w", err)
	}

	whPool, err := db.Connect(ctx, cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse database: %w", err)
	}
	defer whPool.Close()

	if err := warehouse.CreateSchema(ctx, whPool); err != nil {
		return err
	}

	loader := warehouse.NewLoader(warehouse.NewPGStore(whPool), log, runID)
	summary, err := loader.Run(ctx, warehouse.Payload{
		Customers:    customerRows,
		Products:     productRows,
		Sellers:      sellerRows,
		Calendar:     calendarRows,
		Facts:        facts,
		DroppedFacts: stats.DroppedMandatoryKey,
	})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	printSummary(cmd, summary)

	if !summary.Passed && !cfg.Transform.AllowViolations {
		return fmt.Errorf("referential integrity check found %d violations",
			summary.TotalViolations())
	}
	return nil
}

func printSummary(cmd *cobra.Command, s *warehouse.Summary) {
	cmd.Println()
	cmd.Printf("Run %s finished in %s (state: %s)\n",
		s.RunID, s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond), s.State)
	cmd.Println()
	for _, t := range s.Tables {
		cmd.Printf("  %-14s %8d rows loaded\n", t.Table, t.Loaded)
	}
	if s.DroppedFacts > 0 {
		cmd.Printf("  %-14s %8d rows dropped (unresolved mandatory keys)\n",
			"fct_orders", s.DroppedFacts)
	}
	cmd.Println()
	for _, c := range s.Checks {
		status := "ok"
		if c.Violations > 0 {
			status = fmt.Sprintf("%d violations", c.Violations)
		}
		cmd.Printf("  %-22s -> %-14s %s\n", c.ForeignKey, c.Dimension, status)
	}
	cmd.Println()
	if s.Passed {
		cmd.Println("Integrity checks passed.")
	} else {
		cmd.Printf("Integrity checks found %d violations.\n", s.TotalViolations())
	}
}

// newRunID returns a timestamp-based run identifier, unique enough for a
// batch tool that runs at most a few times a day.
func newRunID() string {
	return time.Now().UTC().Format("20060102-150405")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	return ctx, cancel
}
