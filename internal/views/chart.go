package views

import (
	"math"

	"github.com/mmynk/splitmint/internal/models"
)

// Chart geometry in SVG user units.
const (
	ChartWidth      = 400.0
	ChartLabelWidth = 80.0
	ChartRowHeight  = 32.0
	ChartBarHeight  = 20.0
)

// ChartTitle heads the balance chart card.
const ChartTitle = "Net Balances"

// BalanceBar is one horizontal bar.
type BalanceBar struct {
	Name     string
	Amount   float64
	Label    string
	Color    string
	Positive bool

	X      float64
	Y      float64
	Width  float64
	Height float64
	LabelY float64
}

// BalanceChart is a horizontal bar chart of signed balances with a zero
// reference line.
type BalanceChart struct {
	Title  string
	Bars   []BalanceBar
	Width  float64
	Height float64
	ZeroX  float64

	// LabelX is the right edge of the name column.
	LabelX float64
}

// NewBalanceChart maps balances to bars in balance order. Names come from
// lookup with an "Unknown" fallback. It is pure and keeps no state.
func NewBalanceChart(balances models.Balances, lookup models.UserLookup) BalanceChart {
	entries := balances.Entries()

	lo, hi := 0.0, 0.0
	for _, e := range entries {
		lo = math.Min(lo, e.Amount.Float())
		hi = math.Max(hi, e.Amount.Float())
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	plot := ChartWidth - ChartLabelWidth
	scale := func(v float64) float64 {
		return ChartLabelWidth + (v-lo)/span*plot
	}

	chart := BalanceChart{
		Title:  ChartTitle,
		Bars:   make([]BalanceBar, len(entries)),
		Width:  ChartWidth,
		Height: float64(len(entries)) * ChartRowHeight,
		ZeroX:  scale(0),
		LabelX: ChartLabelWidth - 6,
	}
	for i, e := range entries {
		amount := e.Amount.Float()
		top := float64(i) * ChartRowHeight
		chart.Bars[i] = BalanceBar{
			Name:     lookup.NameOrUnknown(e.UserID),
			Amount:   amount,
			Label:    e.Amount.Fixed(),
			Color:    BalanceColor(e.Amount),
			Positive: IsPositive(e.Amount),
			X:        scale(math.Min(amount, 0)),
			Y:        top + (ChartRowHeight-ChartBarHeight)/2,
			Width:    math.Abs(amount) / span * plot,
			Height:   ChartBarHeight,
			LabelY:   top + ChartRowHeight/2,
		}
	}
	return chart
}
