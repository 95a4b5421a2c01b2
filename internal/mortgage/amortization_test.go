package mortgage

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculateKnownLoans(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
	}{
		{name: "GYD house 7% 25y", principal: 20_000_000, rate: 7, years: 25, want: 141355.84},
		{name: "USD 6% 30y", principal: 300_000, rate: 6, years: 30, want: 1798.65},
		{name: "USD 5% 5y", principal: 100_000, rate: 5, years: 5, want: 1887.12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.principal, tc.rate, tc.years)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approxEqual(got.MonthlyPayment, tc.want, 0.01) {
				t.Fatalf("expected monthly payment %.2f, got %.4f", tc.want, got.MonthlyPayment)
			}
			if got.LoanAmount != tc.principal {
				t.Fatalf("expected loan amount %g, got %g", tc.principal, got.LoanAmount)
			}
			if got.InterestRate != tc.rate {
				t.Fatalf("expected interest rate %g, got %g", tc.rate, got.InterestRate)
			}
			if got.TermYears != tc.years {
				t.Fatalf("expected term %d, got %d", tc.years, got.TermYears)
			}
		})
	}
}

func TestCalculateTotalsAreConsistent(t *testing.T) {
	principals := []float64{1_000, 250_000, 20_000_000, 1e9}
	rates := []float64{0, 0.001, 3.5, 7, 12.75, 25}

	for _, p := range principals {
		for _, rate := range rates {
			for _, years := range AllowedTerms {
				got, err := Calculate(p, rate, years)
				if err != nil {
					t.Fatalf("Calculate(%g, %g, %d): %v", p, rate, years, err)
				}

				n := float64(years * 12)
				if !approxEqual(got.TotalPayment, got.MonthlyPayment*n, 1e-6*got.TotalPayment) {
					t.Fatalf("total %g != monthly %g * %g", got.TotalPayment, got.MonthlyPayment, n)
				}
				if got.TotalInterest != got.TotalPayment-got.LoanAmount {
					t.Fatalf("total interest %g != %g - %g", got.TotalInterest, got.TotalPayment, got.LoanAmount)
				}
				if got.TotalInterest < -1e-6*p {
					t.Fatalf("expected non-negative interest, got %g", got.TotalInterest)
				}
			}
		}
	}
}

func TestCalculateZeroRateIsExactDivision(t *testing.T) {
	for _, years := range AllowedTerms {
		got, err := Calculate(1_234_567, 0, years)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := 1_234_567 / float64(years*12)
		if got.MonthlyPayment != want {
			t.Fatalf("term %d: expected %v, got %v", years, want, got.MonthlyPayment)
		}
	}
}

func TestCalculateTinyRateApproachesZeroRate(t *testing.T) {
	zero, err := Calculate(5_000_000, 0, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tiny, err := Calculate(5_000_000, 1e-9, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tiny.MonthlyPayment <= zero.MonthlyPayment {
		t.Fatalf("expected tiny rate payment %v above zero rate payment %v", tiny.MonthlyPayment, zero.MonthlyPayment)
	}
	if !approxEqual(tiny.MonthlyPayment, zero.MonthlyPayment, 1e-3) {
		t.Fatalf("expected %v close to %v", tiny.MonthlyPayment, zero.MonthlyPayment)
	}
}

func TestCalculateIncreasesWithRate(t *testing.T) {
	prev := -1.0
	for _, rate := range []float64{0, 0.5, 1, 2.25, 4, 7, 10, 18} {
		got, err := Calculate(15_000_000, rate, 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.MonthlyPayment <= prev {
			t.Fatalf("rate %g: expected payment above %v, got %v", rate, prev, got.MonthlyPayment)
		}
		prev = got.MonthlyPayment
	}
}

func TestCalculateDecreasesWithTerm(t *testing.T) {
	for _, rate := range []float64{0, 7} {
		prev := math.Inf(1)
		for _, years := range AllowedTerms {
			got, err := Calculate(15_000_000, rate, years)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MonthlyPayment >= prev {
				t.Fatalf("rate %g term %d: expected payment below %v, got %v", rate, years, prev, got.MonthlyPayment)
			}
			prev = got.MonthlyPayment
		}
	}
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
	}{
		{name: "zero principal", principal: 0, rate: 5, years: 10},
		{name: "negative principal", principal: -10, rate: 5, years: 10},
		{name: "NaN principal", principal: math.NaN(), rate: 5, years: 10},
		{name: "infinite principal", principal: math.Inf(1), rate: 5, years: 10},
		{name: "negative rate", principal: 1000, rate: -0.1, years: 10},
		{name: "NaN rate", principal: 1000, rate: math.NaN(), years: 10},
		{name: "zero term", principal: 1000, rate: 5, years: 0},
		{name: "negative term", principal: 1000, rate: 5, years: -5},
		{name: "term above maximum", principal: 1000, rate: 5, years: MaxTermYears + 1},
		{name: "term overflowing months", principal: 100_000, rate: 5, years: math.MaxInt/12 + 1},
		{name: "term overflowing months at zero rate", principal: 100_000, rate: 0, years: math.MaxInt/12 + 1},
		{name: "overflowing payment", principal: math.MaxFloat64, rate: 50, years: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.principal, tc.rate, tc.years)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLoanRequestCalculate(t *testing.T) {
	req := LoanRequest{Principal: 300_000, AnnualRatePercent: 6, TermYears: 30}

	got, err := req.Calculate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := Calculate(300_000, 6, 30)
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Payments() != 360 {
		t.Fatalf("expected 360 payments, got %d", got.Payments())
	}
}

func TestIsAllowedTerm(t *testing.T) {
	for _, years := range []int{5, 10, 15, 20, 25, 30} {
		if !IsAllowedTerm(years) {
			t.Fatalf("expected %d to be allowed", years)
		}
	}
	for _, years := range []int{0, 1, 7, 35, -5} {
		if IsAllowedTerm(years) {
			t.Fatalf("expected %d to be rejected", years)
		}
	}
}

func TestCompareTerms(t *testing.T) {
	results, err := CompareTerms(20_000_000, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(AllowedTerms) {
		t.Fatalf("expected %d results, got %d", len(AllowedTerms), len(results))
	}
	for i, res := range results {
		if res.TermYears != AllowedTerms[i] {
			t.Fatalf("result %d: expected term %d, got %d", i, AllowedTerms[i], res.TermYears)
		}
	}

	if _, err := CompareTerms(-1, 7); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
