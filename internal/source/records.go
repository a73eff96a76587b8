// Package source defines the cleaned operational record sets consumed by
// the star schema transform, and readers that produce them.
package source

import "time"

// Customer is one cleaned customer record.
type Customer struct {
	CustomerID       string
	CustomerUniqueID string
	ZipCodePrefix    string
	City             string
	State            string
}

// Product is one cleaned product record. Physical attributes default to
// zero when the source had no value.
type Product struct {
	ProductID         string
	CategoryName      string
	NameLength        int32
	DescriptionLength int32
	PhotosQty         int32
	WeightG           float64
	LengthCM          float64
	HeightCM          float64
	WidthCM           float64
}

// Seller is one cleaned seller record.
type Seller struct {
	SellerID      string
	ZipCodePrefix string
	City          string
	State         string
}

// Order is one cleaned order header. The event timestamps after purchase
// are nullable: a nil pointer means the event never happened.
type Order struct {
	OrderID             string
	CustomerID          string
	Status              string
	PurchaseTS          time.Time
	ApprovedTS          *time.Time
	CarrierDeliveryTS   *time.Time
	CustomerDeliveryTS  *time.Time
	EstimatedDeliveryTS *time.Time
}

// OrderItem is one cleaned order line. (OrderID, OrderItemID) is the fact
// grain.
type OrderItem struct {
	OrderID      string
	OrderItemID  int32
	ProductID    string
	SellerID     string
	ShippingTS   time.Time
	Price        float64
	FreightValue float64
}

// Payment is one cleaned payment record. An order may carry several.
type Payment struct {
	OrderID      string
	Sequential   int32
	Type         string
	Installments int32
	Value        float64
}

// Review is one cleaned review record. An order may carry several.
type Review struct {
	ReviewID   string
	OrderID    string
	Score      float64
	CreationTS time.Time
	AnswerTS   *time.Time
}

// CategoryTranslation maps a source category name to its English name.
type CategoryTranslation struct {
	Name        string
	NameEnglish string
}
