package calculator

import (
	"net/http"

	"property-listings-api/internal/currency"
	"property-listings-api/internal/handlers"
	"property-listings-api/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Rates handles GET /currency/rates.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	const opName = "rates.list"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	rates, err := h.rates.Rates(ctx)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	span.SetAttributes(attribute.Int("currency.rates", len(rates)))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// SetRate handles PUT /currency/rates/{code}.
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	const opName = "rates.set"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	code, err := currency.ParseCode(chi.URLParam(r, "code"))
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	var req SetRateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		fail(ctx, span, logger, w, opName, "invalid request body", err, http.StatusBadRequest)
		return
	}

	rate := currency.Rate{Code: code, UnitsPerUSD: req.UnitsPerUSD}
	if err := h.rates.SetRate(ctx, rate); err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	span.SetAttributes(
		attribute.String("currency.code", string(code)),
		attribute.String("currency.units_per_usd", req.UnitsPerUSD.String()),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("exchange rate updated",
		zap.String("currency", string(code)),
		zap.String("units_per_usd", req.UnitsPerUSD.String()),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// Convert handles POST /currency/convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	const opName = "convert"
	ctx, span, logger := h.startSpan(r, opName)
	defer span.End()

	var req ConvertRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		fail(ctx, span, logger, w, opName, "invalid request body", err, http.StatusBadRequest)
		return
	}

	from, err := currency.ParseCode(req.From)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}
	to, err := currency.ParseCode(req.To)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	result, err := h.rates.Convert(ctx, req.Amount, from, to)
	if err != nil {
		failWith(ctx, span, logger, w, opName, err)
		return
	}

	conversionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	))
	span.SetAttributes(
		attribute.String("currency.from", string(from)),
		attribute.String("currency.to", string(to)),
	)
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, ConvertResponse{
		Amount:    req.Amount,
		From:      string(from),
		To:        string(to),
		Result:    result,
		Formatted: currency.Format(result, to),
	})
}
