// Package fact builds the order-line-grain fact row set from cleaned
// records and finished dimension outputs.
package fact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwforge/dwforge/internal/source"
	"github.com/dwforge/dwforge/internal/star/calendar"
)

// ErrEmptyInput reports that a mandatory input record set is empty. A
// zero-row fact table is almost always a pipeline defect, so the builder
// refuses to emit one silently.
var ErrEmptyInput = errors.New("mandatory input record set is empty")

// OrderFact is one row of fct_orders, grain one order line item.
type OrderFact struct {
	// Foreign keys. The first four are mandatory; the event date keys
	// are nil when the event never happened.
	CustomerKey     int64
	ProductKey      int64
	SellerKey       int64
	PurchaseDateKey int32
	ApprovalDateKey *int32
	CarrierDateKey  *int32
	DeliveryDateKey *int32

	// Natural keys retained for traceability.
	OrderID     string
	OrderItemID int32

	// Measures.
	Price           float64
	FreightValue    float64
	PaymentValue    float64
	TotalOrderValue float64
	ReviewScore     *float64

	DeliveryTimeDays          *float64
	EstimatedDeliveryTimeDays *float64
	DelayDays                 *float64

	IsDelayed   bool
	IsCancelled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Input carries the cleaned record sets the fact build joins.
type Input struct {
	Orders   []source.Order
	Items    []source.OrderItem
	Payments []source.Payment
	Reviews  []source.Review
}

// Lookups carries the finished dimension and calendar key resolutions.
type Lookups struct {
	Customers map[string]int64
	Products  map[string]int64
	Sellers   map[string]int64
	Dates     map[int32]struct{}
}

// Stats reports what the build did with its input. DroppedMandatoryKey is
// always JoinedRows minus the emitted row count.
type Stats struct {
	JoinedRows           int
	OrphanItems          int
	DroppedMandatoryKey  int
	MissingCalendarDates int
}

// Builder builds the fact row set.
type Builder struct {
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a fact builder logging to the given run logger.
func NewBuilder(log zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{now: time.Now, log: log}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build joins order headers with order lines, aggregates payments and
// reviews onto the order, resolves surrogate keys, computes the derived
// measures, and drops rows whose mandatory keys did not resolve. The drop
// count is returned in Stats, never only logged.
func (b *Builder) Build(ctx context.Context, in Input, lk Lookups) ([]OrderFact, Stats, error) {
	stats := Stats{}

	if len(in.Orders) == 0 {
		return nil, stats, fmt.Errorf("orders: %w", ErrEmptyInput)
	}
	if len(in.Items) == 0 {
		return nil, stats, fmt.Errorf("order items: %w", ErrEmptyInput)
	}

	orders := make(map[string]*source.Order, len(in.Orders))
	for i := range in.Orders {
		orders[in.Orders[i].OrderID] = &in.Orders[i]
	}

	// Left-aggregate children onto the order: payments sum, reviews mean.
	payments := make(map[string]float64, len(in.Payments))
	for _, p := range in.Payments {
		payments[p.OrderID] += p.Value
	}

	reviewSum := make(map[string]float64, len(in.Reviews))
	reviewCount := make(map[string]int, len(in.Reviews))
	for _, r := range in.Reviews {
		reviewSum[r.OrderID] += r.Score
		reviewCount[r.OrderID]++
	}

	now := b.now().UTC()
	rows := make([]OrderFact, 0, len(in.Items))

	for _, item := range in.Items {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		order, ok := orders[item.OrderID]
		if !ok {
			// Orphan line: a silent-data issue, counted and skipped.
			stats.OrphanItems++
			continue
		}
		stats.JoinedRows++

		row := OrderFact{
			OrderID:         item.OrderID,
			OrderItemID:     item.OrderItemID,
			Price:           item.Price,
			FreightValue:    item.FreightValue,
			PaymentValue:    payments[item.OrderID],
			TotalOrderValue: item.Price + item.FreightValue,
			IsCancelled:     order.Status == "canceled" || order.Status == "cancelled",
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if n := reviewCount[item.OrderID]; n > 0 {
			score := reviewSum[item.OrderID] / float64(n)
			row.ReviewScore = &score
		}

		customerKey, haveCustomer := lk.Customers[order.CustomerID]
		productKey, haveProduct := lk.Products[item.ProductID]
		sellerKey, haveSeller := lk.Sellers[item.SellerID]

		purchaseKey, havePurchase := b.resolveDate(&order.PurchaseTS, lk.Dates, &stats)
		row.ApprovalDateKey, _ = b.resolveDate(order.ApprovedTS, lk.Dates, &stats)
		row.CarrierDateKey, _ = b.resolveDate(order.CarrierDeliveryTS, lk.Dates, &stats)
		row.DeliveryDateKey, _ = b.resolveDate(order.CustomerDeliveryTS, lk.Dates, &stats)

		b.deriveDurations(&row, order)

		if !haveCustomer || !haveProduct || !haveSeller || !havePurchase {
			stats.DroppedMandatoryKey++
			continue
		}

		row.CustomerKey = customerKey
		row.ProductKey = productKey
		row.SellerKey = sellerKey
		row.PurchaseDateKey = *purchaseKey
		rows = append(rows, row)
	}

	if stats.OrphanItems > 0 {
		b.log.Warn().
			Int("orphan_items", stats.OrphanItems).
			Msg("Order lines without a matching order header were skipped")
	}
	if stats.MissingCalendarDates > 0 {
		// The calendar margin should cover every event date, so this is
		// a defect worth surfacing loudly.
		b.log.Error().
			Int("missing_dates", stats.MissingCalendarDates).
			Msg("Event dates missing from the calendar dimension")
	}
	if stats.DroppedMandatoryKey > 0 {
		b.log.Warn().
			Int("dropped", stats.DroppedMandatoryKey).
			Msg("Fact rows dropped for unresolved mandatory keys")
	}

	b.log.Info().
		Int("joined", stats.JoinedRows).
		Int("rows", len(rows)).
		Msg("Built fact row set")

	return rows, stats, nil
}

// resolveDate truncates a timestamp to its date and resolves it against
// the calendar. A nil timestamp resolves to nil (event never happened);
// a date absent from the calendar also resolves to nil but is counted as
// a calendar defect.
func (b *Builder) resolveDate(ts *time.Time, dates map[int32]struct{}, stats *Stats) (*int32, bool) {
	if ts == nil {
		return nil, false
	}
	key := calendar.Key(*ts)
	if _, ok := dates[key]; !ok {
		stats.MissingCalendarDates++
		return nil, false
	}
	return &key, true
}

// deriveDurations computes the delivery timing measures in days. Durations
// stay nil when the underlying event has not happened. The delay is
// clamped at zero: an early delivery is no delay, not a negative one.
func (b *Builder) deriveDurations(row *OrderFact, order *source.Order) {
	if order.CustomerDeliveryTS != nil {
		days := daysBetween(order.PurchaseTS, *order.CustomerDeliveryTS)
		if days < 0 {
			days = 0
		}
		row.DeliveryTimeDays = &days
	}

	if order.EstimatedDeliveryTS != nil {
		days := daysBetween(order.PurchaseTS, *order.EstimatedDeliveryTS)
		if days < 0 {
			days = 0
		}
		row.EstimatedDeliveryTimeDays = &days
	}

	if order.CustomerDeliveryTS != nil && order.EstimatedDeliveryTS != nil {
		delay := daysBetween(*order.EstimatedDeliveryTS, *order.CustomerDeliveryTS)
		row.IsDelayed = delay > 0
		if delay < 0 {
			delay = 0
		}
		row.DelayDays = &delay
	}
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
