package handlers

import (
	"net/http"

	"mobilehub/internal/metrics"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orderService *services.OrderService
	recorder     metrics.Recorder
	logger       zerolog.Logger
}

func NewOrderHandler(orderService *services.OrderService, recorder metrics.Recorder, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		recorder:     recorder,
		logger:       logger,
	}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderService.ListOrders(userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderService.PlaceOrder(userID)
	if err != nil {
		h.logger.Warn().Err(err).Int("user_id", userID).Msg("Placing order failed")
		respondWithServiceError(w, err)
		return
	}
	h.recorder.RecordOrderPlaced(order.Total)
	respondWithJSON(w, http.StatusCreated, order)
}
