package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/popuptinybar/tinybar/internal/quotes"
)

func (h *Handler) listExtras(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, h.service.Calculator().AvailableExtras())
}

func (h *Handler) validateQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteInputBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	in, err := body.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, h.service.Validate(in))
}

func (h *Handler) calculateQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteInputBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	in, err := body.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	breakdown, err := h.service.Calculate(in)
	if err != nil {
		h.metrics.validationFails.Inc()
		writeDomainError(w, err)
		return
	}
	h.metrics.observePriced(in, breakdown)
	writeSuccess(w, http.StatusOK, newCalculateResponse(breakdown, h.service.Calculator().Rates().Currency))
}

func (h *Handler) saveQuote(w http.ResponseWriter, r *http.Request) {
	var body saveQuoteBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	quote, breakdown, err := h.service.Save(r.Context(), req)
	if err != nil {
		if errors.Is(err, quotes.ErrValidation) {
			h.metrics.validationFails.Inc()
		} else {
			h.logger.Error().Err(err).Str("request_id", requestIDFromContext(r.Context())).Msg("save quote failed")
		}
		writeDomainError(w, err)
		return
	}
	h.metrics.quotesSaved.Inc()
	h.metrics.observePriced(req.Input(), breakdown)
	writeSuccess(w, http.StatusCreated, saveQuoteResponse{
		Quote:   newQuoteResponse(quote),
		Pricing: breakdown,
		Message: "¡Cotización guardada exitosamente!",
	})
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := h.service.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]quoteResponse, 0, len(list))
	for _, q := range list {
		out = append(out, newQuoteResponse(q))
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *Handler) quoteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) getQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, newQuoteResponse(q))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	q, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, newQuoteResponse(q))
}
