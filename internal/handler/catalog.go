package handler

import (
	"context"
	"net/http"

	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Dishes ────────────────────────────────────────────────────────────────────

// ListDishes GET /v1/dishes?category=
func (h *CatalogHandler) ListDishes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListDishes(c.Request.Context(), c.Query("category")))
}

// GetDish GET /v1/dishes/:id
func (h *CatalogHandler) GetDish(c *gin.Context) {
	d, err := h.svc.GetDish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CreateDish godoc
// @Summary Criar prato
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body dto.CreateDishRequest true "Prato"
// @Success 201 {object} model.Dish
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/dishes [post]
func (h *CatalogHandler) CreateDish(c *gin.Context) {
	var req dto.CreateDishRequest
	if !bindAndValidate(c, &req) {
		return
	}
	d, err := h.svc.CreateDish(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// UpdateDish PUT /v1/dishes/:id
func (h *CatalogHandler) UpdateDish(c *gin.Context) {
	var req dto.UpdateDishRequest
	if !bindAndValidate(c, &req) {
		return
	}
	d, err := h.svc.UpdateDish(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ToggleDishVisibility PATCH /v1/dishes/:id/visibility
func (h *CatalogHandler) ToggleDishVisibility(c *gin.Context) {
	h.dishToggle(c, h.svc.ToggleDishVisibility)
}

// ToggleDishFeatured PATCH /v1/dishes/:id/featured
func (h *CatalogHandler) ToggleDishFeatured(c *gin.Context) {
	h.dishToggle(c, h.svc.ToggleDishFeatured)
}

func (h *CatalogHandler) dishToggle(c *gin.Context, fn func(ctx context.Context, id string) (*model.Dish, error)) {
	d, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DeleteDish DELETE /v1/dishes/:id
func (h *CatalogHandler) DeleteDish(c *gin.Context) {
	if err := h.svc.DeleteDish(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Categories ────────────────────────────────────────────────────────────────

// ListCategories GET /v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListCategories(c.Request.Context()))
}

// CreateCategory POST /v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// UpdateCategory PUT /v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// ToggleCategoryVisibility PATCH /v1/categories/:id/visibility
func (h *CatalogHandler) ToggleCategoryVisibility(c *gin.Context) {
	cat, err := h.svc.ToggleCategoryVisibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory DELETE /v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
