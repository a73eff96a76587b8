// Package calendar generates the date dimension for the star schema.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/dwforge/dwforge/internal/source"
)

// ErrNoData reports that no order dates were found, so the calendar range
// is unbounded and the transform cannot proceed.
var ErrNoData = errors.New("no order dates found, calendar range is unbounded")

// DateRow is one day of the date dimension.
type DateRow struct {
	DateKey     int32
	FullDate    time.Time
	Year        int32
	Quarter     int32
	QuarterName string
	Month       int32
	MonthName   string
	Day         int32
	DayOfWeek   int32 // 0 = Monday .. 6 = Sunday
	DayName     string
	WeekOfYear  int32 // ISO week
	DayOfYear   int32
	IsWeekend   bool
	Season      string
}

// Southern-hemisphere season by month.
var seasons = map[time.Month]string{
	time.December: "summer", time.January: "summer", time.February: "summer",
	time.March: "autumn", time.April: "autumn", time.May: "autumn",
	time.June: "winter", time.July: "winter", time.August: "winter",
	time.September: "spring", time.October: "spring", time.November: "spring",
}

// Key returns the deterministic integer encoding (YYYYMMDD) of a date.
func Key(t time.Time) int32 {
	y, m, d := t.Date()
	return int32(y*10000 + int(m)*100 + d)
}

// RangeFromOrders extracts the observed purchase-date range from the order
// set. Returns ErrNoData when the set is empty.
func RangeFromOrders(orders []source.Order) (min, max time.Time, err error) {
	if len(orders) == 0 {
		return time.Time{}, time.Time{}, ErrNoData
	}

	min, max = orders[0].PurchaseTS, orders[0].PurchaseTS
	for _, o := range orders[1:] {
		if o.PurchaseTS.Before(min) {
			min = o.PurchaseTS
		}
		if o.PurchaseTS.After(max) {
			max = o.PurchaseTS
		}
	}
	return min, max, nil
}

// Generate produces one row per calendar day in [min - margin, max + margin],
// where margin is marginYears whole years. The margin guarantees that every
// event date reachable from an order (approval, carrier, delivery) resolves
// against the calendar.
func Generate(min, max time.Time, marginYears int) ([]DateRow, error) {
	if min.IsZero() || max.IsZero() {
		return nil, ErrNoData
	}
	if min.After(max) {
		return nil, fmt.Errorf("invalid calendar range: min %s after max %s",
			min.Format("2006-01-02"), max.Format("2006-01-02"))
	}

	start := truncate(min).AddDate(-marginYears, 0, 0)
	end := truncate(max).AddDate(marginYears, 0, 0)

	days := int(end.Sub(start).Hours()/24) + 1
	rows := make([]DateRow, 0, days)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, rowFor(d))
	}
	return rows, nil
}

// KeySet returns the set of date keys present in the calendar, for
// membership checks during fact key resolution.
func KeySet(rows []DateRow) map[int32]struct{} {
	set := make(map[int32]struct{}, len(rows))
	for _, r := range rows {
		set[r.DateKey] = struct{}{}
	}
	return set
}

func rowFor(d time.Time) DateRow {
	_, isoWeek := d.ISOWeek()
	wd := d.Weekday()

	// time.Weekday starts at Sunday; the dimension counts from Monday.
	dow := (int32(wd) + 6) % 7

	q := (int32(d.Month())-1)/3 + 1

	return DateRow{
		DateKey:     Key(d),
		FullDate:    d,
		Year:        int32(d.Year()),
		Quarter:     q,
		QuarterName: fmt.Sprintf("Q%d", q),
		Month:       int32(d.Month()),
		MonthName:   d.Month().String(),
		Day:         int32(d.Day()),
		DayOfWeek:   dow,
		DayName:     wd.String(),
		WeekOfYear:  int32(isoWeek),
		DayOfYear:   int32(d.YearDay()),
		IsWeekend:   wd == time.Saturday || wd == time.Sunday,
		Season:      seasons[d.Month()],
	}
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
