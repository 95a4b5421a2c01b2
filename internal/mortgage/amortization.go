package mortgage

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every validation failure in this package.
var ErrInvalidInput = errors.New("invalid loan input")

// MaxTermYears bounds the term accepted by Calculate and Schedule.
const MaxTermYears = 100

// AllowedTerms are the loan terms, in years, offered by the listings site.
// Calculate does not enforce them; callers validate with IsAllowedTerm.
var AllowedTerms = []int{5, 10, 15, 20, 25, 30}

// IsAllowedTerm reports whether years is one of AllowedTerms.
func IsAllowedTerm(years int) bool {
	for _, t := range AllowedTerms {
		if t == years {
			return true
		}
	}
	return false
}

// LoanRequest is the input to a fixed-rate amortization.
type LoanRequest struct {
	Principal         float64
	AnnualRatePercent float64
	TermYears         int
}

// Calculate is shorthand for Calculate(l.Principal, l.AnnualRatePercent, l.TermYears).
func (l LoanRequest) Calculate() (Result, error) {
	return Calculate(l.Principal, l.AnnualRatePercent, l.TermYears)
}

// Result holds the derived payment figures for one loan.
type Result struct {
	MonthlyPayment float64
	TotalPayment   float64
	TotalInterest  float64
	LoanAmount     float64
	InterestRate   float64
	TermYears      int
}

// Payments returns the number of monthly installments.
func (r Result) Payments() int {
	return r.TermYears * 12
}

// Calculate computes the level monthly payment of a fixed-rate loan.
//
// The annuity factor (1+r)^n - 1 is evaluated as expm1(n*log1p(r)) so that
// small monthly rates over long terms keep full precision.
func Calculate(principal, annualRatePercent float64, termYears int) (Result, error) {
	if err := validate(principal, annualRatePercent, termYears); err != nil {
		return Result{}, err
	}

	n := termYears * 12
	r := monthlyRate(annualRatePercent)

	var monthly float64
	if r == 0 {
		monthly = principal / float64(n)
	} else {
		monthly = principal * r / -math.Expm1(-float64(n)*math.Log1p(r))
	}

	total := monthly * float64(n)
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return Result{}, fmt.Errorf("%w: payment overflow for principal %g at %g%%", ErrInvalidInput, principal, annualRatePercent)
	}

	return Result{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - principal,
		LoanAmount:     principal,
		InterestRate:   annualRatePercent,
		TermYears:      termYears,
	}, nil
}

// CompareTerms runs Calculate for every allowed term, shortest first.
func CompareTerms(principal, annualRatePercent float64) ([]Result, error) {
	results := make([]Result, 0, len(AllowedTerms))
	for _, term := range AllowedTerms {
		res, err := Calculate(principal, annualRatePercent, term)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func monthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / 12
}

func validate(principal, annualRatePercent float64, termYears int) error {
	if math.IsNaN(principal) || math.IsInf(principal, 0) || principal <= 0 {
		return fmt.Errorf("%w: principal must be a positive number, got %g", ErrInvalidInput, principal)
	}
	if math.IsNaN(annualRatePercent) || math.IsInf(annualRatePercent, 0) || annualRatePercent < 0 {
		return fmt.Errorf("%w: annual rate must be zero or positive, got %g", ErrInvalidInput, annualRatePercent)
	}
	if termYears <= 0 || termYears > MaxTermYears {
		return fmt.Errorf("%w: term must be between 1 and %d years, got %d", ErrInvalidInput, MaxTermYears, termYears)
	}
	return nil
}
