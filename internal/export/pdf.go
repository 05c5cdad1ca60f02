package export

import (
	"fmt"
	"strconv"
	"time"

	"revenue-service/internal/reporting"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StatementGenerator renders driver ledgers as PDF statements.
type StatementGenerator struct {
	title    string
	currency string
	printer  *message.Printer
}

// NewStatementGenerator creates a generator that prefixes amounts with
// currency.
func NewStatementGenerator(title, currency string) *StatementGenerator {
	if title == "" {
		title = "Driver Earnings Statement"
	}
	return &StatementGenerator{
		title:    title,
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// Amount formats v with thousands separators and two decimals.
func (g *StatementGenerator) Amount(v float64) string {
	return g.currency + g.printer.Sprintf("%.2f", v)
}

// LedgerStatement renders one ledger.
func (g *StatementGenerator) LedgerStatement(ledger reporting.Ledger, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, g.title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	period := "All time"
	if ledger.Period != nil {
		period = ledger.Period.Label
	}
	m.AddRow(12,
		col.New(8).Add(
			text.New("Period: "+period, props.Text{Top: 0}),
			text.New("Generated: "+generatedAt.Format("Jan 02, 2006 15:04 MST"), props.Text{Top: 5}),
		),
		col.New(4),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 9}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(10,
		text.NewCol(4, "Driver", header),
		text.NewCol(2, "Rides", headerRight),
		text.NewCol(2, "Earnings", headerRight),
		text.NewCol(2, "Service Fee Owed", headerRight),
		text.NewCol(2, "Net Earnings", headerRight),
	)

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, e := range ledger.Entries {
		m.AddRow(8,
			text.NewCol(4, e.DisplayName, cell),
			text.NewCol(2, strconv.Itoa(e.TotalRides), cellRight),
			text.NewCol(2, g.Amount(e.TotalEarnings), cellRight),
			text.NewCol(2, g.Amount(e.ServiceFeeOwed), cellRight),
			text.NewCol(2, g.Amount(e.NetEarnings), cellRight),
		)
	}
	if len(ledger.Entries) == 0 {
		m.AddRow(8, text.NewCol(12, "No completed rides in this period.", cell))
	}

	total := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(10,
		text.NewCol(4, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, strconv.Itoa(ledger.Totals.TotalRides), total),
		text.NewCol(2, g.Amount(ledger.Totals.TotalEarnings), total),
		text.NewCol(2, g.Amount(ledger.Totals.TotalServiceFee), total),
		text.NewCol(2, g.Amount(ledger.Totals.NetEarnings), total),
	)
	m.AddRow(8,
		col.New(6),
		text.NewCol(6, "Average service fee per ride: "+g.Amount(ledger.Totals.AverageServiceFeePerRide), props.Text{Size: 8, Align: align.Right}),
	)
	if ledger.UnassignedRides > 0 {
		m.AddRow(8, text.NewCol(12, fmt.Sprintf("%d completed rides had no assigned driver and are not included.", ledger.UnassignedRides), props.Text{Size: 8}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ledger statement: %w", err)
	}
	return doc.GetBytes(), nil
}
