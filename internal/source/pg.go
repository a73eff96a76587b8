package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGReader reads the cleaned record sets from a PostgreSQL schema. Every
// query orders by the natural key so downstream surrogate-key assignment
// sees a stable row order regardless of physical table layout.
type PGReader struct {
	db Querier
}

var _ Reader = (*PGReader)(nil)

// NewPGReader creates a reader over the given connection.
func NewPGReader(db Querier) *PGReader {
	return &PGReader{db: db}
}

// Customers returns all cleaned customer records.
func (r *PGReader) Customers(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `
        SELECT customer_id, customer_unique_id, customer_zip_code_prefix,
               customer_city, customer_state
        FROM customers
        ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var (
			id *string
			c  Customer
		)
		if err := rows.Scan(&id, &c.CustomerUniqueID, &c.ZipCodePrefix, &c.City, &c.State); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		if id == nil {
			return nil, &MissingColumnError{Entity: "customers", Column: "customer_id"}
		}
		c.CustomerID = *id
		out = append(out, c)
	}
	return out, rows.Err()
}

// Products returns all cleaned product records. Null physical attributes
// come back as zero, per the cleaning contract.
func (r *PGReader) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
        SELECT product_id,
               COALESCE(product_category_name, ''),
               COALESCE(product_name_lenght, 0),
               COALESCE(product_description_lenght, 0),
               COALESCE(product_photos_qty, 0),
               COALESCE(product_weight_g, 0),
               COALESCE(product_length_cm, 0),
               COALESCE(product_height_cm, 0),
               COALESCE(product_width_cm, 0)
        FROM products
        ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			id *string
			p  Product
		)
		if err := rows.Scan(&id, &p.CategoryName, &p.NameLength, &p.DescriptionLength,
			&p.PhotosQty, &p.WeightG, &p.LengthCM, &p.HeightCM, &p.WidthCM); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if id == nil {
			return nil, &MissingColumnError{Entity: "products", Column: "product_id"}
		}
		p.ProductID = *id
		out = append(out, p)
	}
	return out, rows.Err()
}

// Sellers returns all cleaned seller records.
func (r *PGReader) Sellers(ctx context.Context) ([]Seller, error) {
	rows, err := r.db.Query(ctx, `
        SELECT seller_id, seller_zip_code_prefix, seller_city, seller_state
        FROM sellers
        ORDER BY seller_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read sellers: %w", err)
	}
	defer rows.Close()

	var out []Seller
	for rows.Next() {
		var (
			id *string
			s  Seller
		)
		if err := rows.Scan(&id, &s.ZipCodePrefix, &s.City, &s.State); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		if id == nil {
			return nil, &MissingColumnError{Entity: "sellers", Column: "seller_id"}
		}
		s.SellerID = *id
		out = append(out, s)
	}
	return out, rows.Err()
}

// Orders returns all cleaned order headers.
func (r *PGReader) Orders(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
        SELECT order_id, customer_id, order_status,
               order_purchase_timestamp, order_approved_at,
               order_delivered_carrier_date, order_delivered_customer_date,
               order_estimated_delivery_date
        FROM orders
        ORDER BY order_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			id *string
			o  Order
		)
		if err := rows.Scan(&id, &o.CustomerID, &o.Status, &o.PurchaseTS,
			&o.ApprovedTS, &o.CarrierDeliveryTS, &o.CustomerDeliveryTS,
			&o.EstimatedDeliveryTS); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if id == nil {
			return nil, &MissingColumnError{Entity: "orders", Column: "order_id"}
		}
		o.OrderID = *id
		out = append(out, o)
	}
	return out, rows.Err()
}

// OrderItems returns all cleaned order lines.
func (r *PGReader) OrderItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := r.db.Query(ctx, `
        SELECT order_id, order_item_id, product_id, seller_id,
               shipping_limit_date, price, freight_value
        FROM order_items
        ORDER BY order_id, order_item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.OrderID, &it.OrderItemID, &it.ProductID, &it.SellerID,
			&it.ShippingTS, &it.Price, &it.FreightValue); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Payments returns all cleaned payment records.
func (r *PGReader) Payments(ctx context.Context) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `
        SELECT order_id, payment_sequential, payment_type,
               payment_installments, payment_value
        FROM order_payments
        ORDER BY order_id, payment_sequential`)
	if err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.OrderID, &p.Sequential, &p.Type, &p.Installments, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reviews returns all cleaned review records.
func (r *PGReader) Reviews(ctx context.Context) ([]Review, error) {
	rows, err := r.db.Query(ctx, `
        SELECT review_id, order_id, review_score,
               review_creation_date, review_answer_timestamp
        FROM order_reviews
        ORDER BY order_id, review_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ReviewID, &rv.OrderID, &rv.Score, &rv.CreationTS, &rv.AnswerTS); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// CategoryTranslations returns the category translation lookup set.
func (r *PGReader) CategoryTranslations(ctx context.Context) ([]CategoryTranslation, error) {
	rows, err := r.db.Query(ctx, `
        SELECT product_category_name, product_category_name_english
        FROM product_category_translation
        ORDER BY product_category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to read category translations: %w", err)
	}
	defer rows.Close()

	var out []CategoryTranslation
	for rows.Next() {
		var ct CategoryTranslation
		if err := rows.Scan(&ct.Name, &ct.NameEnglish); err != nil {
			return nil, fmt.Errorf("failed to scan category translation: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}
