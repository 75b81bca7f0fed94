package handlers

import (
	"net/http"

	"mobilehub/internal/models"
	"mobilehub/internal/services"

	"github.com/rs/zerolog"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	logger         zerolog.Logger
}

func NewCatalogHandler(catalogService *services.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := h.catalogService.GetProductByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.Product
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.catalogService.CreateProduct(&req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Product creation failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.Product
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.catalogService.UpdateProduct(id, &req)
	if err != nil {
		h.logger.Warn().Err(err).Int("product_id", id).Msg("Product update failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	category, err := h.catalogService.GetCategoryByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.Category
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.catalogService.CreateCategory(&req)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Category creation failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.Category
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.catalogService.UpdateCategory(id, &req)
	if err != nil {
		h.logger.Warn().Err(err).Int("category_id", id).Msg("Category update failed")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(id); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{})
}
