package http

import (
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const defaultSeriesWindow = 6

type summaryResponse struct {
	finance.View
	Progress float64 `json:"progress"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		View:     s.store.View(),
		Progress: s.store.Progress(),
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Breakdown())
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	window := defaultSeriesWindow
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			writeError(w, http.StatusBadRequest, "window must be an integer between 1 and 60")
			return
		}
		window = n
	}
	writeJSON(w, http.StatusOK, s.store.Series(window))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Goal())
}

type goalInput struct {
	Target   string `json:"target"`
	Deadline string `json:"deadline"`
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var in goalInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := core.ParseAmount(in.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	goal := core.SavingsGoal{Target: target}
	if in.Deadline != "" {
		deadline, err := core.ParseDate(in.Deadline)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "deadline must be a YYYY-MM-DD date")
			return
		}
		goal.Deadline = deadline
	}

	if err := s.store.SetGoal(r.Context(), goal); err != nil {
		writeError(w, statusForMutation(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.Goal())
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Currency())
}

type currencyInput struct {
	Code string `json:"code"`
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var in currencyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cur, ok := core.CurrencyByCode(in.Code)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown currency code: "+in.Code)
		return
	}
	if err := s.store.SetCurrency(r.Context(), cur); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.Currency())
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories)
}

func handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Currencies)
}
