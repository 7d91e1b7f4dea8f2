package handler

import (
	"net/http"

	"veredapos/internal/apierror"
	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PublicHandler serves the guest-facing pages: the digital menu, the
// customer display of a table and ordering from the table QR code. None of
// these routes require a token.
type PublicHandler struct {
	catalog  service.CatalogService
	tables   service.TableService
	orders   service.OrderService
	settings service.SettingsService
}

func NewPublicHandler(catalog service.CatalogService, tables service.TableService, orders service.OrderService, settings service.SettingsService) *PublicHandler {
	return &PublicHandler{catalog: catalog, tables: tables, orders: orders, settings: settings}
}

// Menu godoc
// @Summary Menu digital
// @Tags public
// @Produce json
// @Success 200 {object} model.PublicMenu
// @Router /v1/public/menu [get]
func (h *PublicHandler) Menu(c *gin.Context) {
	m, err := h.catalog.PublicMenu(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// TableDisplay GET /v1/public/tables/:id
func (h *PublicHandler) TableDisplay(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	t, err := h.tables.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	menu, err := h.catalog.PublicMenu(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	orders := h.orders.ListOrders(ctx, service.OrderFilter{Status: model.OrderOpen, TableID: &id})
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	featured := []model.Dish{}
	for _, d := range menu.Dishes {
		if d.IsFeatured {
			featured = append(featured, d)
		}
	}
	s := h.settings.Get(ctx)
	c.JSON(http.StatusOK, dto.TableDisplayResponse{
		Table:          *t,
		RestaurantName: s.RestaurantName,
		Currency:       s.Currency,
		Orders:         orders,
		Total:          total,
		Featured:       featured,
	})
}

// SelfOrder godoc
// @Summary Pedido pelo QR da mesa
// @Tags public
// @Accept json
// @Produce json
// @Param id path int true "Mesa"
// @Param body body dto.SelfOrderRequest true "Item"
// @Success 201 {object} model.Order
// @Failure 404 {object} apierror.APIError
// @Router /v1/public/tables/{id}/items [post]
func (h *PublicHandler) SelfOrder(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req dto.SelfOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, err := h.tables.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	// guests only see the digital menu; hidden dishes do not exist for them
	menu, err := h.catalog.PublicMenu(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !onMenu(menu, req.DishID) {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrDishNotFound.Error()))
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	o, err := h.orders.AddItem(ctx, service.AddItemInput{
		TableID:       &id,
		DishID:        req.DishID,
		Quantity:      qty,
		Notes:         req.Notes,
		KeepSelection: true,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func onMenu(m *model.PublicMenu, dishID string) bool {
	for _, d := range m.Dishes {
		if d.ID == dishID {
			return true
		}
	}
	return false
}
