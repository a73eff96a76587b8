package source

import (
	"context"
	"fmt"
)

// Reader provides the cleaned record sets the transform consumes. How the
// sets were produced and stored is not this package's concern; the contract
// is only that each method returns the full set in a stable order.
type Reader interface {
	Customers(ctx context.Context) ([]Customer, error)
	Products(ctx context.Context) ([]Product, error)
	Sellers(ctx context.Context) ([]Seller, error)
	Orders(ctx context.Context) ([]Order, error)
	OrderItems(ctx context.Context) ([]OrderItem, error)
	Payments(ctx context.Context) ([]Payment, error)
	Reviews(ctx context.Context) ([]Review, error)
	CategoryTranslations(ctx context.Context) ([]CategoryTranslation, error)
}

// MissingColumnError reports a mandatory column that is absent or null in
// the source. This is a configuration/schema defect and aborts the run
// before any write.
type MissingColumnError struct {
	Entity string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("source entity %s is missing mandatory column %s", e.Entity, e.Column)
}
