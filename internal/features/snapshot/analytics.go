package snapshot

import (
	"errors"
	"math"
	"sort"
	"time"

	"go-crm-assistant/internal/common/daterange"
	"go-crm-assistant/internal/common/models"
)

const (
	LowStockThreshold    = 10
	MediumStockThreshold = 50

	// MinPredictionReceipts is the hard floor of history needed for a forecast
	MinPredictionReceipts = 10
	// HighConfidenceReceipts is the history size at which forecasts are "High" confidence
	HighConfidenceReceipts = 30
	ForecastDays           = 30

	day = 24 * time.Hour
)

var ErrNotEnoughHistory = errors.New("not enough sales history")

// StockStatus buckets a quantity into Low (<10), Medium (<50) or Good stock
func StockStatus(quantity int) string {
	switch {
	case quantity < LowStockThreshold:
		return "Low Stock"
	case quantity < MediumStockThreshold:
		return "Medium Stock"
	default:
		return "Good Stock"
	}
}

// LowStock returns products below threshold, lowest quantity first
func LowStock(products []models.Product, threshold int) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.Quantity < threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

func TotalRevenue(receipts []models.Receipt) float64 {
	var total float64
	for _, r := range receipts {
		total += r.Total
	}
	return total
}

func ReceiptsInRange(receipts []models.Receipt, r daterange.Range) []models.Receipt {
	var out []models.Receipt
	for _, rec := range receipts {
		if r.Contains(rec.CreatedAt) {
			out = append(out, rec)
		}
	}
	return out
}

// CountSince counts receipts created within window before now
func CountSince(receipts []models.Receipt, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	n := 0
	for _, r := range receipts {
		if r.CreatedAt.After(cutoff) && !r.CreatedAt.After(now) {
			n++
		}
	}
	return n
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// countByName tallies names, most frequent first. Equal counts keep first-seen order.
func countByName(names []string) []NameCount {
	index := map[string]int{}
	var out []NameCount
	for _, n := range names {
		if i, ok := index[n]; ok {
			out[i].Count++
			continue
		}
		index[n] = len(out)
		out = append(out, NameCount{Name: n, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// TopCustomers ranks customers by number of receipts and keeps the first n
func TopCustomers(receipts []models.Receipt, n int) []NameCount {
	names := make([]string, 0, len(receipts))
	for _, r := range receipts {
		names = append(names, r.CustomerName)
	}
	top := countByName(names)
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// CategoryBreakdown counts products per category, largest first
func CategoryBreakdown(products []models.Product) []NameCount {
	names := make([]string, 0, len(products))
	for _, p := range products {
		c := p.Category
		if c == "" {
			c = "Uncategorized"
		}
		names = append(names, c)
	}
	return countByName(names)
}

type Trend struct {
	CurrentWeek   int     `json:"currentWeek"`
	PreviousWeek  int     `json:"previousWeek"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"trend"`
}

// WeekOverWeek compares transaction counts of the last 7 days against the 7 days before.
func WeekOverWeek(receipts []models.Receipt, now time.Time) Trend {
	weekAgo := now.Add(-7 * day)
	twoWeeksAgo := now.Add(-14 * day)

	var t Trend
	for _, r := range receipts {
		switch {
		case r.CreatedAt.After(weekAgo) && !r.CreatedAt.After(now):
			t.CurrentWeek++
		case r.CreatedAt.After(twoWeeksAgo) && !r.CreatedAt.After(weekAgo):
			t.PreviousWeek++
		}
	}

	switch {
	case t.PreviousWeek > 0:
		t.ChangePercent = float64(t.CurrentWeek-t.PreviousWeek) / float64(t.PreviousWeek) * 100
	case t.CurrentWeek > 0:
		t.ChangePercent = 100
	}

	switch {
	case t.ChangePercent > 0:
		t.Direction = "Growing"
	case t.ChangePercent < 0:
		t.Direction = "Declining"
	default:
		t.Direction = "Stable"
	}
	return t
}

// windowDays is the number of calendar days from the oldest receipt through today.
func windowDays(receipts []models.Receipt, now time.Time) int {
	if len(receipts) == 0 {
		return 1
	}
	oldest := receipts[0].CreatedAt
	for _, r := range receipts[1:] {
		if r.CreatedAt.Before(oldest) {
			oldest = r.CreatedAt
		}
	}
	oldest = oldest.In(now.Location())
	start := time.Date(oldest.Year(), oldest.Month(), oldest.Day(), 0, 0, 0, 0, now.Location())
	days := int(math.Ceil(now.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// DailyAverageCount is the mean number of receipts per calendar day over
// the window spanned by the receipts.
func DailyAverageCount(receipts []models.Receipt, now time.Time) float64 {
	if len(receipts) == 0 {
		return 0
	}
	return float64(len(receipts)) / float64(windowDays(receipts, now))
}

// ProjectRevenueFromRecent scales the revenue of the last `days` days up to a
// full `days`-day period when the available history is shorter than that.
func ProjectRevenueFromRecent(receipts []models.Receipt, now time.Time, days int) float64 {
	cutoff := now.Add(-time.Duration(days) * day)
	var recent float64
	for _, r := range receipts {
		if !r.CreatedAt.Before(cutoff) && !r.CreatedAt.After(now) {
			recent += r.Total
		}
	}
	covered := windowDays(receipts, now)
	if covered >= days {
		return recent
	}
	return recent * float64(days) / float64(covered)
}

type Prediction struct {
	DailyAverage     float64 `json:"dailyAverage"`
	PredictedOrders  int     `json:"predictedOrders"`
	PredictedRevenue float64 `json:"predictedRevenue"`
	Confidence       string  `json:"confidence"`
	BasedOn          int     `json:"basedOn"`
}

// Predict projects the next ForecastDays of volume and revenue. Volume comes
// from DailyAverageCount, revenue from ProjectRevenueFromRecent.
func Predict(receipts []models.Receipt, now time.Time) (Prediction, error) {
	if len(receipts) < MinPredictionReceipts {
		return Prediction{BasedOn: len(receipts)}, ErrNotEnoughHistory
	}

	avg := DailyAverageCount(receipts, now)
	p := Prediction{
		DailyAverage:     avg,
		PredictedOrders:  int(math.Round(avg * ForecastDays)),
		PredictedRevenue: ProjectRevenueFromRecent(receipts, now, ForecastDays),
		Confidence:       "Medium",
		BasedOn:          len(receipts),
	}
	if len(receipts) >= HighConfidenceReceipts {
		p.Confidence = "High"
	}
	return p, nil
}

// LastPurchase returns the newest receipt time for an exact customer name
func LastPurchase(receipts []models.Receipt, customerName string) (time.Time, bool) {
	var last time.Time
	found := false
	for _, r := range receipts {
		if r.CustomerName != customerName {
			continue
		}
		if !found || r.CreatedAt.After(last) {
			last = r.CreatedAt
			found = true
		}
	}
	return last, found
}

// InactiveCustomers lists customers whose last purchase is before cutoff.
// Customers who never purchased count as inactive.
func InactiveCustomers(customers []models.Customer, receipts []models.Receipt, cutoff time.Time) []models.Customer {
	var out []models.Customer
	for _, c := range customers {
		last, ok := LastPurchase(receipts, c.Name)
		if !ok || last.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

type StaffStats struct {
	Name    string  `json:"name"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// StaffPerformance aggregates orders per staff member, highest revenue first.
// Staff with no orders are listed with zero totals.
func StaffPerformance(staff []models.Staff, orders []models.Order) []StaffStats {
	index := map[string]int{}
	var out []StaffStats
	add := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(out)
		out = append(out, StaffStats{Name: name})
		return len(out) - 1
	}
	for _, s := range staff {
		add(s.Name)
	}
	for _, o := range orders {
		if o.StaffName == "" {
			continue
		}
		i := add(o.StaffName)
		out[i].Orders++
		out[i].Revenue += o.Total
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}
