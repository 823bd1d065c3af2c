package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"n3portal/internal/model"
	"n3portal/internal/mw"
	"n3portal/internal/service"
	"n3portal/internal/validate"
)

type statusRequest struct {
	Status string `json:"status"`
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status model.Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			st, err := model.ParseStatus(raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			status = st
		}

		orders, err := orderSvc.List(r.Context(), status)
		if err != nil {
			slog.Error("list orders failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, orders)
	}
}

func GetOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := validate.OrderNumber(chi.URLParam(r, "number"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		order, err := orderSvc.Find(r.Context(), number)
		if err != nil {
			writeOrderError(w, err)
			return
		}

		writeJSON(w, order)
	}
}

func UpdateStatusHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := validate.OrderNumber(chi.URLParam(r, "number"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		status, err := model.ParseStatus(req.Status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		order, err := orderSvc.SetStatus(r.Context(), number, status)
		if err != nil {
			writeOrderError(w, err)
			return
		}

		staff, _ := mw.StaffFrom(r.Context())
		slog.Info("order status changed", "order", number, "status", status, "staff", staff)
		writeJSON(w, order)
	}
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("order request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
