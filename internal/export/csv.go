package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"revenue-service/internal/reporting"
)

var (
	ledgerHeader = []string{"Driver Name", "Total Rides", "Total Earnings", "Service Fee Owed", "Net Earnings"}
	incomeHeader = []string{"Week", "Start", "End", "Total Rides", "Total Earnings", "Total Service Fee", "Average Service Fee Per Ride"}
)

// WriteLedgerCSV writes one row per ledger entry.
func WriteLedgerCSV(w io.Writer, ledger reporting.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for _, e := range ledger.Entries {
		row := []string{
			e.DisplayName,
			strconv.Itoa(e.TotalRides),
			amount(e.TotalEarnings),
			amount(e.ServiceFeeOwed),
			amount(e.NetEarnings),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write ledger row for %s: %w", e.DriverID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteWeeklyIncomeCSV writes the totals of each weekly ledger, in the order
// given.
func WriteWeeklyIncomeCSV(w io.Writer, ledgers []reporting.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(incomeHeader); err != nil {
		return fmt.Errorf("failed to write income header: %w", err)
	}

	for _, l := range ledgers {
		var label, start, end string
		if l.Period != nil {
			label = l.Period.Label
			start = l.Period.Start.Format("2006-01-02")
			end = l.Period.End.Format("2006-01-02")
		}
		row := []string{
			label,
			start,
			end,
			strconv.Itoa(l.Totals.TotalRides),
			amount(l.Totals.TotalEarnings),
			amount(l.Totals.TotalServiceFee),
			amount(l.Totals.AverageServiceFeePerRide),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write income row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
