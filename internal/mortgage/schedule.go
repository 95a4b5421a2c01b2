package mortgage

import (
	"github.com/shopspring/decimal"
)

// Installment is one row of an amortization table. Amounts are rounded to
// cents.
type Installment struct {
	Month     int
	Payment   decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Balance   decimal.Decimal
}

// YearSummary aggregates the installments of one loan year.
type YearSummary struct {
	Year           int
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	ClosingBalance decimal.Decimal
}

const centPlaces = 2

// Schedule builds the month-by-month amortization table for a loan.
// Each installment pays the cent-rounded level payment; the last one pays
// whatever balance remains so the table closes at exactly zero.
func Schedule(principal, annualRatePercent float64, termYears int) ([]Installment, error) {
	res, err := Calculate(principal, annualRatePercent, termYears)
	if err != nil {
		return nil, err
	}

	n := res.Payments()
	rate := decimal.NewFromFloat(monthlyRate(annualRatePercent))
	payment := decimal.NewFromFloat(res.MonthlyPayment).Round(centPlaces)
	balance := decimal.NewFromFloat(principal).Round(centPlaces)

	rows := make([]Installment, 0, n)
	for month := 1; month <= n; month++ {
		interest := balance.Mul(rate).Round(centPlaces)
		principalPart := payment.Sub(interest)

		if month == n || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		balance = balance.Sub(principalPart)

		rows = append(rows, Installment{
			Month:     month,
			Payment:   principalPart.Add(interest),
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return rows, nil
}

// YearlySummary folds a monthly schedule into per-year totals.
func YearlySummary(rows []Installment) []YearSummary {
	var years []YearSummary
	for _, row := range rows {
		year := (row.Month-1)/12 + 1
		if len(years) < year {
			years = append(years, YearSummary{
				Year:      year,
				Principal: decimal.Zero,
				Interest:  decimal.Zero,
			})
		}
		y := &years[year-1]
		y.Principal = y.Principal.Add(row.Principal)
		y.Interest = y.Interest.Add(row.Interest)
		y.ClosingBalance = row.Balance
	}
	return years
}
