package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	bigStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	posStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	negStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// TextRenderer renders a View for a terminal.
type TextRenderer struct{}

// Render writes the header bar followed by the selected tab.
func (TextRenderer) Render(w io.Writer, v View, tab Tab) error {
	var b strings.Builder

	b.WriteString(brandStyle.Render("HedgeShield"))
	b.WriteString("  ")
	b.WriteString(subStyle.Render("FX Risk Desk · multi-company"))
	b.WriteString("\n")
	b.WriteString(tabBar(tab))
	b.WriteString("\n")
	b.WriteString("Company: " + v.Tenant + "   Scenario: " + scenarioBar(v.Scenarios))
	b.WriteString("\n")
	if len(v.Syncing) > 0 {
		b.WriteString(dimStyle.Render("Syncing: " + strings.Join(v.Syncing, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch tab {
	case TabDesk, "":
		renderDesk(&b, v)
	case TabOrders:
		renderOrders(&b, v)
	case TabPortfolio:
		renderPortfolio(&b, v)
	default:
		return fmt.Errorf("view: unknown tab %q", tab)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func tabBar(current Tab) string {
	if current == "" {
		current = TabDesk
	}
	parts := make([]string, 0, len(Tabs))
	for _, t := range Tabs {
		label := " " + strings.ToUpper(string(t[:1])) + string(t[1:]) + " "
		if t == current {
			label = activeStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

func scenarioBar(opts []ScenarioOption) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.Active {
			parts = append(parts, activeStyle.Render("["+o.Label+"]"))
			continue
		}
		parts = append(parts, " "+o.Label+" ")
	}
	return strings.Join(parts, " ")
}

func renderDesk(b *strings.Builder, v View) {
	pnl := negStyle
	if v.Totals.Positive {
		pnl = posStyle
	}
	b.WriteString(headStyle.Render("Total Exposure") + "  " + bigStyle.Render(v.Totals.Exposure) + "\n")
	b.WriteString(headStyle.Render("Projected PnL") + "   " + pnl.Render(v.Totals.PnL) + "\n\n")

	b.WriteString(headStyle.Render("Exposure by contract") + "\n")
	if len(v.Chart.Labels) == 0 {
		b.WriteString(dimStyle.Render("No contracts yet.") + "\n\n")
	} else {
		rows := make([][]string, 0, len(v.Chart.Labels))
		for i, label := range v.Chart.Labels {
			row := []string{label}
			for _, ds := range v.Chart.Datasets {
				row = append(row, ds.Data[i].StringFixed(2))
			}
			rows = append(rows, row)
		}
		headers := []string{""}
		for _, ds := range v.Chart.Datasets {
			headers = append(headers, ds.Label)
		}
		b.WriteString(grid(headers, rows, nil) + "\n\n")
	}

	b.WriteString(headStyle.Render("Contracts") + "\n")
	if len(v.Contracts) == 0 {
		b.WriteString(dimStyle.Render("No contracts yet.") + "\n")
		return
	}
	rows := make([][]string, 0, len(v.Contracts))
	for _, c := range v.Contracts {
		rows = append(rows, []string{
			c.ID, c.Pair, c.Notional, c.DueDate + " (" + strconv.Itoa(c.DaysLeft) + "d)", c.Status, c.Suggestion,
		})
	}
	b.WriteString(grid([]string{"ID", "Pair", "Notional", "Due", "Status", "Suggestion"}, rows, nil) + "\n")
}

func renderOrders(b *strings.Builder, v View) {
	b.WriteString(headStyle.Render("Order history") + "\n")
	if len(v.Orders) == 0 {
		b.WriteString(dimStyle.Render("No orders yet.") + "\n")
		return
	}
	rows := make([][]string, 0, len(v.Orders))
	for _, o := range v.Orders {
		rows = append(rows, []string{o.ShortID, o.Pair, o.Side, o.Price, o.Scenario, o.At})
	}
	sideStyle := func(row, col int) (lipgloss.Style, bool) {
		if col != 2 {
			return lipgloss.Style{}, false
		}
		if v.Orders[row].Buy {
			return posStyle, true
		}
		return negStyle, true
	}
	b.WriteString(grid([]string{"ID", "Pair", "Side", "Price", "Scenario", "At"}, rows, sideStyle) + "\n")
}

func renderPortfolio(b *strings.Builder, v View) {
	b.WriteString(headStyle.Render("Consolidated portfolio") + "\n")
	if len(v.Portfolio) == 0 {
		b.WriteString(dimStyle.Render("No data yet.") + "\n")
		return
	}
	rows := make([][]string, 0, len(v.Portfolio))
	for _, p := range v.Portfolio {
		rows = append(rows, []string{p.Pair, p.TotalNotional, strconv.Itoa(p.Count)})
	}
	b.WriteString(grid([]string{"Pair", "Total Notional", "Count"}, rows, nil) + "\n")
}

// grid renders a bordered table; override may restyle individual data cells.
func grid(headers []string, rows [][]string, override func(row, col int) (lipgloss.Style, bool)) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle.Padding(0, 1)
			}
			if override != nil {
				if s, ok := override(row, col); ok {
					return s.Padding(0, 1)
				}
			}
			return cellStyle
		})
	return t.String()
}
