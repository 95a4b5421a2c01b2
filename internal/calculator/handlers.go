package calculator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"property-listings-api/internal/currency"
	"property-listings-api/internal/handlers"
	"property-listings-api/internal/mortgage"
	"property-listings-api/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the mortgage calculator and currency endpoints.
type Handler struct {
	rates           *currency.Converter
	defaultCurrency currency.Code
}

func NewHandler(rates *currency.Converter, defaultCurrency currency.Code) *Handler {
	return &Handler{rates: rates, defaultCurrency: defaultCurrency}
}

var errTermNotOffered = fmt.Errorf("%w: term_years must be one of %s", mortgage.ErrInvalidInput, joinTerms())

func joinTerms() string {
	parts := make([]string, len(mortgage.AllowedTerms))
	for i, t := range mortgage.AllowedTerms {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ", ")
}

// ---------------------------------------------------------------------------
// Mortgage
// ---------------------------------------------------------------------------

// Calculate handles POST /mortgage/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	const opName = "calculate"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	var req LoanRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		fail(ctx, span, logger, w, opName, "invalid request body", err, http.StatusBadRequest)
		return
	}

	loanCurrency, displayCurrency, err := h.currencies(req.Currency, req.DisplayCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	if !mortgage.IsAllowedTerm(req.TermYears) {
		failWith(ctx, span, logger, w, opName, errTermNotOffered)
		return
	}

	principal, err := loanAmount(req.Principal, req.PropertyPrice, req.DownPayment)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	res, err := h.compute(ctx, span, principal, req.AnnualRatePercent, req.TermYears, loanCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	resp, err := h.present(ctx, res, loanCurrency, displayCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	span.SetStatus(codes.Ok, "")

	logger.Info("mortgage calculated",
		zap.Float64("principal", res.LoanAmount),
		zap.Float64("annual_rate_percent", res.InterestRate),
		zap.Int("term_years", res.TermYears),
		zap.Float64("monthly_payment", res.MonthlyPayment),
		zap.String("currency", string(loanCurrency)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// Schedule handles POST /mortgage/schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	const opName = "schedule"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	var req LoanRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		fail(ctx, span, logger, w, opName, "invalid request body", err, http.StatusBadRequest)
		return
	}

	loanCurrency, displayCurrency, err := h.currencies(req.Currency, req.DisplayCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	if !mortgage.IsAllowedTerm(req.TermYears) {
		failWith(ctx, span, logger, w, opName, errTermNotOffered)
		return
	}

	principal, err := loanAmount(req.Principal, req.PropertyPrice, req.DownPayment)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	res, err := h.compute(ctx, span, principal, req.AnnualRatePercent, req.TermYears, loanCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	_, schedSpan := tracer.Start(ctx, "mortgage.schedule.build")
	rows, err := mortgage.Schedule(principal, req.AnnualRatePercent, req.TermYears)
	schedSpan.SetAttributes(attribute.Int("mortgage.installments", len(rows)))
	schedSpan.End()
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	summary, err := h.present(ctx, res, loanCurrency, displayCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	span.SetStatus(codes.Ok, "")

	logger.Info("amortization schedule built",
		zap.Float64("principal", principal),
		zap.Int("term_years", req.TermYears),
		zap.Int("installments", len(rows)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, ScheduleResponse{
		Summary:      summary,
		Installments: toInstallments(rows),
		Years:        toYearSummaries(mortgage.YearlySummary(rows)),
	})
}

// Compare handles POST /mortgage/compare — one result per offered term,
// each computed in its own child span.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	const opName = "compare"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	var req CompareRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		fail(ctx, span, logger, w, opName, "invalid request body", err, http.StatusBadRequest)
		return
	}

	loanCurrency, displayCurrency, err := h.currencies(req.Currency, req.DisplayCurrency)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	principal, err := loanAmount(req.Principal, req.PropertyPrice, req.DownPayment)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	results := make([]LoanResponse, 0, len(mortgage.AllowedTerms))
	for _, term := range mortgage.AllowedTerms {
		termCtx, termSpan := tracer.Start(ctx, fmt.Sprintf("mortgage.compare.term.%d", term),
			trace.WithAttributes(attribute.Int("mortgage.term_years", term)),
		)

		res, err := h.compute(termCtx, termSpan, principal, req.AnnualRatePercent, term, loanCurrency)
		if err != nil {
			termSpan.RecordError(err)
			termSpan.SetStatus(codes.Error, err.Error())
			termSpan.End()
			failWith(ctx, span, logger, w, opName, err)
			return
		}

		resp, err := h.present(termCtx, res, loanCurrency, displayCurrency)
		termSpan.End()
		if err != nil {
			failWith(ctx, span, logger, w, opName, err)
			return
		}
		results = append(results, resp)
	}

	span.SetAttributes(attribute.Int("mortgage.compare.terms", len(results)))
	span.SetStatus(codes.Ok, "")

	logger.Info("mortgage terms compared",
		zap.Float64("principal", principal),
		zap.Float64("annual_rate_percent", req.AnnualRatePercent),
		zap.Int("terms", len(results)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, CompareResponse{Results: results})
}

// Terms handles GET /mortgage/terms.
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, TermsResponse{TermYears: mortgage.AllowedTerms})
}

// compute runs the amortization and records its span attributes and metrics.
func (h *Handler) compute(ctx context.Context, span trace.Span, principal, rate float64, termYears int, loanCurrency currency.Code) (mortgage.Result, error) {
	span.SetAttributes(
		attribute.Float64("mortgage.principal", principal),
		attribute.Float64("mortgage.annual_rate_percent", rate),
		attribute.Int("mortgage.term_years", termYears),
		attribute.String("mortgage.currency", string(loanCurrency)),
	)

	start := time.Now()
	res, err := mortgage.Calculate(principal, rate, termYears)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	if err != nil {
		return mortgage.Result{}, err
	}

	attrs := metric.WithAttributes(
		attribute.Int("term_years", termYears),
		attribute.String("currency", string(loanCurrency)),
	)
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	paymentGauge.Record(ctx, res.MonthlyPayment, attrs)

	span.AddEvent("amortization.complete", trace.WithAttributes(
		attribute.Float64("monthly_payment", res.MonthlyPayment),
		attribute.Float64("total_interest", res.TotalInterest),
		attribute.Float64("duration_ms", elapsed),
	))

	return res, nil
}

// present converts the result for display. Raw figures stay in the loan
// currency; only the formatted strings use the display currency.
func (h *Handler) present(ctx context.Context, res mortgage.Result, loanCurrency, displayCurrency currency.Code) (LoanResponse, error) {
	amounts := []float64{res.MonthlyPayment, res.TotalPayment, res.TotalInterest, res.LoanAmount}
	formatted := make([]string, len(amounts))

	for i, amount := range amounts {
		converted, err := h.rates.Convert(ctx, decimal.NewFromFloat(amount), loanCurrency, displayCurrency)
		if err != nil {
			return LoanResponse{}, err
		}
		formatted[i] = currency.Format(converted, displayCurrency)
	}

	return LoanResponse{
		MonthlyPayment: res.MonthlyPayment,
		TotalPayment:   res.TotalPayment,
		TotalInterest:  res.TotalInterest,
		LoanAmount:     res.LoanAmount,
		InterestRate:   res.InterestRate,
		TermYears:      res.TermYears,
		Currency:       string(loanCurrency),
		Formatted: FormattedAmounts{
			Currency:       string(displayCurrency),
			MonthlyPayment: formatted[0],
			TotalPayment:   formatted[1],
			TotalInterest:  formatted[2],
			LoanAmount:     formatted[3],
		},
	}, nil
}

func (h *Handler) currencies(loan, display string) (currency.Code, currency.Code, error) {
	loanCurrency := h.defaultCurrency
	if loan != "" {
		c, err := currency.ParseCode(loan)
		if err != nil {
			return "", "", err
		}
		loanCurrency = c
	}

	displayCurrency := loanCurrency
	if display != "" {
		c, err := currency.ParseCode(display)
		if err != nil {
			return "", "", err
		}
		displayCurrency = c
	}

	return loanCurrency, displayCurrency, nil
}

// loanAmount resolves the borrowed amount. An explicit principal wins over
// property_price minus down_payment.
func loanAmount(principal, price, down float64) (float64, error) {
	if principal != 0 || price == 0 {
		return principal, nil
	}
	if price < 0 {
		return 0, fmt.Errorf("%w: property_price must be positive, got %g", mortgage.ErrInvalidInput, price)
	}
	if down < 0 || down >= price {
		return 0, fmt.Errorf("%w: down_payment must be between 0 and the property price, got %g", mortgage.ErrInvalidInput, down)
	}
	return price - down, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *Handler) startSpan(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)

	return ctx, span, observability.LoggerWithTrace(ctx)
}

func fail(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter, opName, msg string, err error, status int) {
	observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
}

// failWith maps a domain error onto an HTTP status. Client errors echo the
// error text; anything else is reported as an internal error.
func failWith(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter, opName string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	fail(ctx, span, logger, w, opName, msg, err, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, mortgage.ErrInvalidInput),
		errors.Is(err, currency.ErrUnknownCurrency),
		errors.Is(err, currency.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, currency.ErrRateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
