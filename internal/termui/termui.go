// Package termui renders view snapshots as terminal text with lipgloss.
//
// Colors follow the writer: a terminal gets the balance colors, anything
// else (pipes, files, tests) gets plain text.
package termui

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/splitmint/internal/views"
)

const (
	barRune  = "█"
	zeroRune = "│"
	bullet   = "•"

	// DefaultChartCells is the plot width of balance bars in columns.
	DefaultChartCells = 40
)

// Renderer turns view snapshots into text for one writer.
type Renderer struct {
	r *lipgloss.Renderer

	brand    lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	alert    lipgloss.Style
	avatar   lipgloss.Style
}

// New creates a renderer whose color profile is detected from w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		r:        r,
		brand:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981")),
		header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("245")),
		positive: r.NewStyle().Foreground(lipgloss.Color(views.ColorPositive)),
		negative: r.NewStyle().Foreground(lipgloss.Color(views.ColorNegative)),
		alert:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Padding(0, 1),
		avatar:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981")),
	}
}

// Navbar renders the brand and the signed-in identity.
func (t *Renderer) Navbar(n views.Navbar) string {
	identity := t.muted.Render("not signed in")
	if n.ShowLogout {
		identity = n.UserEmail
	}
	return t.brand.Render(n.Brand) + "  " + identity
}

// Alert renders a one-line error banner. Empty messages render nothing.
func (t *Renderer) Alert(msg string) string {
	if msg == "" {
		return ""
	}
	return t.alert.Render(msg)
}

// Groups renders the groups list with ids so they can be passed to other
// commands.
func (t *Renderer) Groups(v views.GroupsView) string {
	var lines []string
	if a := t.Alert(v.Alert); a != "" {
		lines = append(lines, a)
	}
	lines = append(lines, t.header.Render("Your Groups"))
	if len(v.Cards) == 0 {
		lines = append(lines, t.muted.Render("No groups yet."))
	}

	nameWidth := 0
	for _, c := range v.Cards {
		nameWidth = max(nameWidth, lipgloss.Width(c.Name))
	}
	for _, c := range v.Cards {
		lines = append(lines, bullet+" "+pad(c.Name, nameWidth)+"  "+
			t.muted.Render(strconv.Itoa(c.MemberCount)+" members  "+c.ID))
	}
	return strings.Join(lines, "\n")
}

// GroupDetail renders the whole group page: members, balances with their
// bars, settlements and expenses.
func (t *Renderer) GroupDetail(v views.GroupDetailView) string {
	if !v.Ready {
		return t.muted.Render("Loading...")
	}

	lines := []string{t.header.Render(v.Name), ""}

	lines = append(lines, t.header.Render("Members"))
	for _, m := range v.Members {
		lines = append(lines, "  "+t.avatar.Render(m.Initial)+" "+m.Name+" "+t.muted.Render("("+m.Email+")"))
	}
	lines = append(lines, "")

	lines = append(lines, t.header.Render("Balances"))
	if !v.HasBalances {
		lines = append(lines, t.muted.Render("Loading..."))
	} else {
		nameWidth := 0
		for _, b := range v.Balances {
			nameWidth = max(nameWidth, lipgloss.Width(b.Name))
		}
		for _, b := range v.Balances {
			lines = append(lines, "  "+pad(b.Name, nameWidth)+"  "+t.signed(b.Positive).Render(b.Amount))
		}
		if chart := t.Chart(v.Chart, DefaultChartCells); chart != "" {
			lines = append(lines, "", chart)
		}

		lines = append(lines, "", t.header.Render("Settlements"))
		if v.NoSettlements {
			lines = append(lines, t.muted.Render(views.NoSettlementsMessage))
		}
		for _, s := range v.Settlements {
			lines = append(lines, "  "+s.String())
		}
	}
	lines = append(lines, "")

	lines = append(lines, t.header.Render("Expenses"))
	if len(v.Expenses) == 0 {
		lines = append(lines, t.muted.Render("No expenses yet."))
	} else {
		lines = append(lines, t.expenseTable(v.Expenses)...)
	}
	return strings.Join(lines, "\n")
}

func (t *Renderer) expenseTable(rows []views.ExpenseRow) []string {
	cells := [][]string{{"Date", "Description", "Paid By", "Amount", "Split"}}
	for _, r := range rows {
		cells = append(cells, []string{r.Date, r.Description, r.Payer, r.Amount, r.SplitType})
	}

	widths := make([]int, len(cells[0]))
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	out := make([]string, 0, len(cells))
	for i, row := range cells {
		cols := make([]string, len(row))
		for j, c := range row {
			if j == 3 {
				cols[j] = strings.Repeat(" ", widths[j]-lipgloss.Width(c)) + c
			} else {
				cols[j] = pad(c, widths[j])
			}
		}
		line := "  " + strings.TrimRight(strings.Join(cols, "  "), " ")
		if i == 0 {
			line = t.muted.Render(line)
		}
		out = append(out, line)
	}
	return out
}

// Chart renders the balance chart as horizontal bars over cells columns
// with a zero marker, reusing the chart's geometry.
func (t *Renderer) Chart(c views.BalanceChart, cells int) string {
	if len(c.Bars) == 0 || cells <= 0 {
		return ""
	}
	plot := c.Width - views.ChartLabelWidth
	col := func(x float64) int {
		n := int(math.Round((x - views.ChartLabelWidth) / plot * float64(cells)))
		return min(max(n, 0), cells)
	}
	zero := min(col(c.ZeroX), cells-1)

	nameWidth := 0
	for _, b := range c.Bars {
		nameWidth = max(nameWidth, lipgloss.Width(b.Name))
	}

	lines := []string{t.header.Render(c.Title)}
	for _, b := range c.Bars {
		start, end := col(b.X), col(b.X+b.Width)
		if end == start && b.Amount != 0 && end < cells {
			end++
		}

		row := make([]string, cells)
		for i := range row {
			row[i] = " "
		}
		row[zero] = zeroRune
		for i := start; i < end; i++ {
			row[i] = barRune
		}

		bar := strings.Join(row[:start], "") +
			t.r.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(strings.Join(row[start:end], "")) +
			strings.Join(row[end:], "")
		lines = append(lines, "  "+pad(b.Name, nameWidth)+" "+bar+" "+t.signed(b.Positive).Render(b.Label))
	}
	return strings.Join(lines, "\n")
}

func (t *Renderer) signed(positive bool) lipgloss.Style {
	if positive {
		return t.positive
	}
	return t.negative
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
