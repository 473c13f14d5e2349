package handlers

import (
	"net/http"

	"github.com/mmynk/homebase/internal/service"
)

type expenseRequest struct {
	Label string     `json:"label"`
	Price FlexString `json:"price"`
}

func (req expenseRequest) input() service.ExpenseInput {
	return service.ExpenseInput{Label: req.Label, Price: string(req.Price)}
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.expenses.Create(r.Context(), userID(r), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.expenses.Update(r.Context(), userID(r), id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.expenses.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Expense deleted")
}
