package warehouse

import (
	"github.com/dwforge/dwforge/internal/star/calendar"
	"github.com/dwforge/dwforge/internal/star/dims"
	"github.com/dwforge/dwforge/internal/star/fact"
)

// Column lists for the bulk-append path. Order must match the flatteners
// below.
var (
	customerColumns = []string{
		"customer_key", "customer_id", "customer_unique_id",
		"customer_zip_code_prefix", "customer_city", "customer_state",
		"customer_region", "is_current", "valid_from", "valid_to",
	}
	productColumns = []string{
		"product_key", "product_id", "product_category_name",
		"product_category_name_english", "product_name_length",
		"product_description_length", "product_photos_qty",
		"product_weight_g", "product_length_cm", "product_height_cm",
		"product_width_cm", "product_volume_cm3", "product_size_class",
		"is_current", "valid_from", "valid_to",
	}
	sellerColumns = []string{
		"seller_key", "seller_id", "seller_zip_code_prefix",
		"seller_city", "seller_state", "seller_region",
		"is_current", "valid_from", "valid_to",
	}
	dateColumns = []string{
		"date_key", "full_date", "year", "quarter", "quarter_name",
		"month", "month_name", "day", "day_of_week", "day_name",
		"week_of_year", "day_of_year", "is_weekend", "season",
	}
	factColumns = []string{
		"customer_key", "product_key", "seller_key",
		"purchase_date_key", "approval_date_key", "carrier_date_key",
		"delivery_date_key", "order_id", "order_item_id",
		"price", "freight_value", "payment_value", "total_order_value",
		"review_score", "delivery_time_days",
		"estimated_delivery_time_days", "delivery_delay_days",
		"is_delayed", "is_cancelled", "created_at", "updated_at",
	}
	runColumns = []string{
		"run_id", "started_at", "finished_at", "state",
		"fact_rows", "dropped_rows",
	}
)

func customerValues(rows []dims.CustomerRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.CustomerKey, r.CustomerID, r.CustomerUniqueID,
			r.ZipCodePrefix, r.City, r.State, r.Region,
			r.IsCurrent, r.ValidFrom, r.ValidTo,
		}
	}
	return out
}

func productValues(rows []dims.ProductRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.ProductKey, r.ProductID, r.CategoryName,
			r.CategoryNameEnglish, r.NameLength, r.DescriptionLength,
			r.PhotosQty, r.WeightG, r.LengthCM, r.HeightCM, r.WidthCM,
			r.VolumeCM3, r.SizeClass,
			r.IsCurrent, r.ValidFrom, r.ValidTo,
		}
	}
	return out
}

func sellerValues(rows []dims.SellerRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.SellerKey, r.SellerID, r.ZipCodePrefix,
			r.City, r.State, r.Region,
			r.IsCurrent, r.ValidFrom, r.ValidTo,
		}
	}
	return out
}

func dateValues(rows []calendar.DateRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.DateKey, r.FullDate, r.Year, r.Quarter, r.QuarterName,
			r.Month, r.MonthName, r.Day, r.DayOfWeek, r.DayName,
			r.WeekOfYear, r.DayOfYear, r.IsWeekend, r.Season,
		}
	}
	return out
}

func factValues(rows []fact.OrderFact) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{
			r.CustomerKey, r.ProductKey, r.SellerKey,
			r.PurchaseDateKey, r.ApprovalDateKey, r.CarrierDateKey,
			r.DeliveryDateKey, r.OrderID, r.OrderItemID,
			r.Price, r.FreightValue, r.PaymentValue, r.TotalOrderValue,
			r.ReviewScore, r.DeliveryTimeDays,
			r.EstimatedDeliveryTimeDays, r.DelayDays,
			r.IsDelayed, r.IsCancelled, r.CreatedAt, r.UpdatedAt,
		}
	}
	return out
}
