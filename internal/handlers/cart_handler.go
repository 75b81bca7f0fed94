package handlers

import (
	"net/http"

	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
)

type CartHandler struct {
	cartService *services.CartService
	logger      zerolog.Logger
}

func NewCartHandler(cartService *services.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.cartService.ListItems(userID)
	if err != nil {
		h.logger.Error().Err(err).Int("user_id", userID).Msg("Listing cart failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.cartService.GetItem(userID, itemID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req models.CreateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		h.logger.Warn().Err(err).Int("user_id", userID).Int("product_id", req.ProductID).Msg("Add to cart failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.cartService.UpdateQuantity(userID, itemID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.cartService.RemoveItem(userID, itemID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{})
}
