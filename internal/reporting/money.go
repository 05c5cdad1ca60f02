package reporting

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return money(v)
}

// dec converts a finite float into a decimal. Callers only pass values that
// went through ingestion, which already rejects NaN and infinities.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// money rounds a float to cents.
func money(v float64) float64 {
	return dec(v).Round(2).InexactFloat64()
}

// cents rounds a decimal to cents and returns it as a float for output.
func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// divide returns num/den rounded to cents, or 0 when den is zero.
func divide(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return cents(num.Div(den))
}

// percent returns num/den*100 rounded to two decimals, or 0 when den is zero.
func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return cents(num.Mul(hundred).Div(den))
}

// tally accumulates the three revenue streams of a ride set.
type tally struct {
	total   decimal.Decimal
	company decimal.Decimal
	driver  decimal.Decimal
}

func (t *tally) add(f FareBreakdown) {
	t.total = t.total.Add(dec(f.TotalFare))
	t.company = t.company.Add(dec(f.CompanyEarnings))
	t.driver = t.driver.Add(dec(f.DriverEarnings))
}
