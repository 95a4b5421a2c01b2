package calculator

import (
	"github.com/shopspring/decimal"

	"property-listings-api/internal/mortgage"
)

// LoanRequest is the JSON body for POST /mortgage/calculate and
// POST /mortgage/schedule. Either principal, or property_price with an
// optional down_payment, describes the amount borrowed.
type LoanRequest struct {
	Principal         float64 `json:"principal"`
	PropertyPrice     float64 `json:"property_price"`
	DownPayment       float64 `json:"down_payment"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
	Currency          string  `json:"currency"`         // defaults to the service currency
	DisplayCurrency   string  `json:"display_currency"` // defaults to currency
}

// CompareRequest is the JSON body for POST /mortgage/compare.
type CompareRequest struct {
	Principal         float64 `json:"principal"`
	PropertyPrice     float64 `json:"property_price"`
	DownPayment       float64 `json:"down_payment"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	Currency          string  `json:"currency"`
	DisplayCurrency   string  `json:"display_currency"`
}

// LoanResponse is the JSON form of mortgage.Result.
type LoanResponse struct {
	MonthlyPayment float64          `json:"monthly_payment"`
	TotalPayment   float64          `json:"total_payment"`
	TotalInterest  float64          `json:"total_interest"`
	LoanAmount     float64          `json:"loan_amount"`
	InterestRate   float64          `json:"interest_rate"`
	TermYears      int              `json:"term_years"`
	Currency       string           `json:"currency"`
	Formatted      FormattedAmounts `json:"formatted"`
}

// FormattedAmounts holds display strings, converted into Currency.
type FormattedAmounts struct {
	Currency       string `json:"currency"`
	MonthlyPayment string `json:"monthly_payment"`
	TotalPayment   string `json:"total_payment"`
	TotalInterest  string `json:"total_interest"`
	LoanAmount     string `json:"loan_amount"`
}

// CompareResponse is the JSON response for POST /mortgage/compare.
type CompareResponse struct {
	Results []LoanResponse `json:"results"`
}

// ScheduleResponse is the JSON response for POST /mortgage/schedule.
type ScheduleResponse struct {
	Summary      LoanResponse  `json:"summary"`
	Installments []Installment `json:"installments"`
	Years        []YearSummary `json:"years"`
}

// Installment is one month of the amortization table. Amounts are decimal
// strings in the loan currency.
type Installment struct {
	Month     int             `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

type YearSummary struct {
	Year           int             `json:"year"`
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// TermsResponse is the JSON response for GET /mortgage/terms.
type TermsResponse struct {
	TermYears []int `json:"term_years"`
}

// ConvertRequest is the JSON body for POST /currency/convert.
type ConvertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	From   string          `json:"from"`
	To     string          `json:"to"`
}

// ConvertResponse is the JSON response for POST /currency/convert.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

// SetRateRequest is the JSON body for PUT /currency/rates/{code}.
type SetRateRequest struct {
	UnitsPerUSD decimal.Decimal `json:"units_per_usd"`
}

func toInstallments(rows []mortgage.Installment) []Installment {
	out := make([]Installment, len(rows))
	for i, r := range rows {
		out[i] = Installment{
			Month:     r.Month,
			Payment:   r.Payment,
			Principal: r.Principal,
			Interest:  r.Interest,
			Balance:   r.Balance,
		}
	}
	return out
}

func toYearSummaries(years []mortgage.YearSummary) []YearSummary {
	out := make([]YearSummary, len(years))
	for i, y := range years {
		out[i] = YearSummary{
			Year:           y.Year,
			Principal:      y.Principal,
			Interest:       y.Interest,
			ClosingBalance: y.ClosingBalance,
		}
	}
	return out
}
