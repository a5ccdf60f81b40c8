// Package trend implements supplier price statistics over confirmed
// entries. All computations are pure: the same input collection always
// yields the same report. Only records fetched from the remote store are
// analyzed, never the pending queue.
package trend

import (
	"math"

	"pricetrack/internal/models"
)

// Direction classifies the price movement for a supplier.
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

// slopeEpsilon bounds the rounding noise below which a slope counts as flat.
const slopeEpsilon = 1e-9

// Config holds analyzer settings.
type Config struct {
	// WindowSize bounds how many recent records feed the slope estimate.
	WindowSize int
	// AlertThreshold flags records priced below average * threshold.
	AlertThreshold float64
	// MaxAlerts caps the alert list.
	MaxAlerts int
}

// DefaultConfig returns the default analyzer settings.
func DefaultConfig() Config {
	return Config{
		WindowSize:     10,
		AlertThreshold: 0.8,
		MaxAlerts:      3,
	}
}

// SupplierStats summarizes one supplier's entries.
type SupplierStats struct {
	Supplier  string    `json:"supplier"`
	Average   float64   `json:"average_price"`
	Direction Direction `json:"trend"`
	Samples   int       `json:"samples"`
}

// Alert flags an entry priced well below its supplier's average.
type Alert struct {
	Entry   models.PriceEntry `json:"entry"`
	Average float64           `json:"supplier_average"`
}

// Report is the full analysis output.
type Report struct {
	Suppliers []SupplierStats `json:"suppliers"`
	Alerts    []Alert         `json:"alerts"`
}

// Analyzer computes supplier statistics. It is stateless and safe for
// concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an Analyzer; zero config fields fall back to defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.WindowSize < 2 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.AlertThreshold <= 0 || cfg.AlertThreshold >= 1 {
		cfg.AlertThreshold = def.AlertThreshold
	}
	if cfg.MaxAlerts < 1 {
		cfg.MaxAlerts = def.MaxAlerts
	}
	return &Analyzer{cfg: cfg}
}

// Analyze produces a report over entries given in chronological order.
// Supplier groups preserve the original relative order of their entries.
func (a *Analyzer) Analyze(entries []models.PriceEntry) Report {
	groups, order := groupBySupplier(entries)

	report := Report{
		Suppliers: make([]SupplierStats, 0, len(order)),
	}

	averages := make(map[string]float64, len(order))
	for _, supplier := range order {
		group := groups[supplier]
		avg := mean(group)
		averages[supplier] = avg

		report.Suppliers = append(report.Suppliers, SupplierStats{
			Supplier:  supplier,
			Average:   avg,
			Direction: a.direction(group),
			Samples:   len(group),
		})
	}

	// Alerts keep original record order, capped at MaxAlerts.
	for _, e := range entries {
		if len(report.Alerts) >= a.cfg.MaxAlerts {
			break
		}
		avg := averages[e.Supplier]
		if e.Price < avg*a.cfg.AlertThreshold {
			report.Alerts = append(report.Alerts, Alert{Entry: e, Average: avg})
		}
	}

	return report
}

// direction estimates the trend over the most recent WindowSize prices.
// Fewer than two points is treated as stable.
func (a *Analyzer) direction(group []models.PriceEntry) Direction {
	prices := make([]float64, 0, len(group))
	for _, e := range group {
		prices = append(prices, e.Price)
	}
	if len(prices) > a.cfg.WindowSize {
		prices = prices[len(prices)-a.cfg.WindowSize:]
	}

	s := slope(prices)
	switch {
	case s > slopeEpsilon:
		return DirectionRising
	case s < -slopeEpsilon:
		return DirectionFalling
	default:
		return DirectionStable
	}
}

// groupBySupplier partitions entries by supplier, preserving each group's
// relative order and the suppliers' first-appearance order.
func groupBySupplier(entries []models.PriceEntry) (map[string][]models.PriceEntry, []string) {
	groups := make(map[string][]models.PriceEntry)
	var order []string

	for _, e := range entries {
		if _, seen := groups[e.Supplier]; !seen {
			order = append(order, e.Supplier)
		}
		groups[e.Supplier] = append(groups[e.Supplier], e)
	}

	return groups, order
}

// mean returns the arithmetic mean price of a group.
func mean(group []models.PriceEntry) float64 {
	if len(group) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range group {
		sum += e.Price
	}
	return sum / float64(len(group))
}

// slope fits an ordinary least-squares line of price against position index
// and returns its gradient. Fewer than two points has no defined slope.
func slope(prices []float64) float64 {
	n := float64(len(prices))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range prices {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if math.Abs(denom) < slopeEpsilon {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
