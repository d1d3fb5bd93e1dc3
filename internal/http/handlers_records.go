package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// statusForMutation maps record validation failures to 422 and everything
// else, including remote write failures, to 500.
func statusForMutation(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyLabel),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidCycle),
		errors.Is(err, core.ErrMissingDate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Expenses())
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in finance.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.store.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, statusForMutation(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Income())
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var in finance.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.store.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, statusForMutation(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleRemoveIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveIncome(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Subscriptions())
}

func (s *Server) handleAddSubscription(w http.ResponseWriter, r *http.Request) {
	var in finance.SubscriptionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := s.store.AddSubscription(r.Context(), in)
	if err != nil {
		writeError(w, statusForMutation(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleRemoveSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveSubscription(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
