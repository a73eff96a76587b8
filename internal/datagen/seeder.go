package datagen

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Product categories with their English translations, mirroring the shape
// of the real export's translation table.
var categories = map[string]string{
	"moveis_decoracao":      "furniture_decor",
	"beleza_saude":          "health_beauty",
	"esporte_lazer":         "sports_leisure",
	"informatica_acessorios": "computers_accessories",
	"cama_mesa_banho":       "bed_bath_table",
	"brinquedos":            "toys",
	"relogios_presentes":    "watches_gifts",
	"telefonia":             "telephony",
	"automotivo":            "auto",
	"eletronicos":           "electronics",
	"papelaria":             "stationery",
	"perfumaria":            "perfumery",
}

var states = []string{
	"SP", "RJ", "MG", "ES", "PR", "SC", "RS", "BA", "PE", "CE",
	"GO", "MT", "MS", "DF", "AM", "PA", "MA", "RN", "PB", "PI",
}

var paymentTypes = []string{"credit_card", "boleto", "voucher", "debit_card"}

// Config controls how much data the seeder generates.
type Config struct {
	// Orders is the number of order headers to generate.
	Orders int

	// Seed makes generation reproducible when non-zero.
	Seed uint64
}

// Seeder fills the source schema with a coherent synthetic dataset:
// every order references a generated customer, every line a generated
// product and seller, and the event timestamps progress realistically.
type Seeder struct {
	faker *Faker
	log   zerolog.Logger
	cfg   Config
}

// NewSeeder creates a seeder.
func NewSeeder(log zerolog.Logger, cfg Config) *Seeder {
	f := NewFaker()
	if cfg.Seed != 0 {
		f = NewFakerWithSeed(cfg.Seed)
	}
	return &Seeder{faker: f, log: log, cfg: cfg}
}

// Run creates the source schema and generates the dataset.
func (s *Seeder) Run(ctx context.Context, pool *pgxpool.Pool) error {
	if err := CreateSourceSchema(ctx, pool); err != nil {
		return err
	}

	numOrders := s.cfg.Orders
	numProducts := max(20, numOrders/5)
	numSellers := max(5, numOrders/50)

	s.log.Info().
		Int("orders", numOrders).
		Int("products", numProducts).
		Int("sellers", numSellers).
		Msg("Seeding source dataset")

	if err := s.seedTranslations(ctx, pool); err != nil {
		return err
	}

	productIDs, err := s.seedProducts(ctx, pool, numProducts)
	if err != nil {
		return err
	}

	sellerIDs, err := s.seedSellers(ctx, pool, numSellers)
	if err != nil {
		return err
	}

	return s.seedOrders(ctx, pool, numOrders, productIDs, sellerIDs)
}

func (s *Seeder) copyRows(ctx context.Context, pool *pgxpool.Pool, table string, columns []string, rows [][]any) error {
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to seed %s: %w", table, err)
	}
	s.log.Info().Str("table", table).Int64("rows", n).Msg("Seeded table")
	return nil
}

func (s *Seeder) seedTranslations(ctx context.Context, pool *pgxpool.Pool) error {
	rows := make([][]any, 0, len(categories))
	for name, english := range categories {
		rows = append(rows, []any{name, english})
	}
	return s.copyRows(ctx, pool, "product_category_translation",
		[]string{"product_category_name", "product_category_name_english"}, rows)
}

func (s *Seeder) seedProducts(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}

	ids := make([]string, count)
	rows := make([][]any, count)
	for i := range rows {
		ids[i] = s.faker.HexID()
		rows[i] = []any{
			ids[i],
			Choose(s.faker, names),
			s.faker.Int(20, 70),
			s.faker.Int(100, 2000),
			s.faker.Int(1, 8),
			s.faker.Float(50, 5000),
			s.faker.Float(5, 100),
			s.faker.Float(2, 60),
			s.faker.Float(5, 80),
		}
	}

	columns := []string{
		"product_id", "product_category_name", "product_name_lenght",
		"product_description_lenght", "product_photos_qty",
		"product_weight_g", "product_length_cm", "product_height_cm",
		"product_width_cm",
	}
	return ids, s.copyRows(ctx, pool, "products", columns, rows)
}

func (s *Seeder) seedSellers(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	ids := make([]string, count)
	rows := make([][]any, count)
	for i := range rows {
		ids[i] = s.faker.HexID()
		rows[i] = []any{
			ids[i],
			s.faker.Zip(),
			s.faker.City(),
			Choose(s.faker, states),
		}
	}

	columns := []string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"}
	return ids, s.copyRows(ctx, pool, "sellers", columns, rows)
}

func (s *Seeder) seedOrders(ctx context.Context, pool *pgxpool.Pool, count int, productIDs, sellerIDs []string) error {
	rangeStart := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2018, time.August, 31, 0, 0, 0, 0, time.UTC)

	customerRows := make([][]any, 0, count)
	orderRows := make([][]any, 0, count)
	itemRows := make([][]any, 0, count*2)
	paymentRows := make([][]any, 0, count)
	reviewRows := make([][]any, 0, count)

	for i := 0; i < count; i++ {
		customerID := s.faker.HexID()
		customerRows = append(customerRows, []any{
			customerID,
			s.faker.HexID(),
			s.faker.Zip(),
			s.faker.City(),
			Choose(s.faker, states),
		})

		orderID := s.faker.HexID()
		purchase := s.faker.DateBetween(rangeStart, rangeEnd)
		estimated := purchase.AddDate(0, 0, s.faker.Int(10, 40))

		status := "delivered"
		switch {
		case s.faker.Bool(0.03):
			status = "canceled"
		case s.faker.Bool(0.04):
			status = "shipped"
		case s.faker.Bool(0.03):
			status = "processing"
		}

		var approved, carrier, delivered *time.Time
		if status != "processing" {
			t := purchase.Add(time.Duration(s.faker.Int(1, 48)) * time.Hour)
			approved = &t
		}
		if status == "shipped" || status == "delivered" {
			t := approved.AddDate(0, 0, s.faker.Int(1, 5))
			carrier = &t
		}
		if status == "delivered" {
			t := carrier.AddDate(0, 0, s.faker.Int(2, 25))
			delivered = &t
		}

		orderRows = append(orderRows, []any{
			orderID, customerID, status, purchase,
			approved, carrier, delivered, estimated,
		})

		numItems := s.faker.Int(1, 3)
		var orderTotal float64
		for n := 1; n <= numItems; n++ {
			price := s.faker.Price(10, 500)
			freight := s.faker.Price(5, 50)
			orderTotal += price + freight
			itemRows = append(itemRows, []any{
				orderID, n,
				Choose(s.faker, productIDs),
				Choose(s.faker, sellerIDs),
				purchase.AddDate(0, 0, s.faker.Int(3, 7)),
				price, freight,
			})
		}

		// Split the order total across one or two payments.
		if s.faker.Bool(0.2) {
			first := orderTotal * s.faker.Float(0.3, 0.7)
			paymentRows = append(paymentRows,
				[]any{orderID, 1, Choose(s.faker, paymentTypes), s.faker.Int(1, 10), first},
				[]any{orderID, 2, "voucher", 1, orderTotal - first},
			)
		} else {
			paymentRows = append(paymentRows,
				[]any{orderID, 1, Choose(s.faker, paymentTypes), s.faker.Int(1, 10), orderTotal})
		}

		if delivered != nil && s.faker.Bool(0.8) {
			created := delivered.AddDate(0, 0, s.faker.Int(0, 5))
			answered := created.AddDate(0, 0, s.faker.Int(0, 10))
			reviewRows = append(reviewRows, []any{
				s.faker.HexID(), orderID, s.faker.Int(1, 5), created, &answered,
			})
		}
	}

	if err := s.copyRows(ctx, pool, "customers", []string{
		"customer_id", "customer_unique_id", "customer_zip_code_prefix",
		"customer_city", "customer_state",
	}, customerRows); err != nil {
		return err
	}

	if err := s.copyRows(ctx, pool, "orders", []string{
		"order_id", "customer_id", "order_status", "order_purchase_timestamp",
		"order_approved_at", "order_delivered_carrier_date",
		"order_delivered_customer_date", "order_estimated_delivery_date",
	}, orderRows); err != nil {
		return err
	}

	if err := s.copyRows(ctx, pool, "order_items", []string{
		"order_id", "order_item_id", "product_id", "seller_id",
		"shipping_limit_date", "price", "freight_value",
	}, itemRows); err != nil {
		return err
	}

	if err := s.copyRows(ctx, pool, "order_payments", []string{
		"order_id", "payment_sequential", "payment_type",
		"payment_installments", "payment_value",
	}, paymentRows); err != nil {
		return err
	}

	return s.copyRows(ctx, pool, "order_reviews", []string{
		"review_id", "order_id", "review_score",
		"review_creation_date", "review_answer_timestamp",
	}, reviewRows)
}
