package handler

import (
	"net/http"

	"veredapos/internal/dto"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// List GET /v1/customers?q=
func (h *CustomersHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context(), c.Query("q")))
}

// Get GET /v1/customers/:id
func (h *CustomersHandler) Get(c *gin.Context) {
	cu, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// Create POST /v1/customers
func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cu, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cu)
}

// Update PUT /v1/customers/:id
func (h *CustomersHandler) Update(c *gin.Context) {
	var req dto.UpdateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cu, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// Delete DELETE /v1/customers/:id
func (h *CustomersHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SettleDebt godoc
// @Summary Registar pagamento de divida
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Cliente"
// @Param body body dto.SettleDebtRequest true "Valor"
// @Success 200 {object} model.Customer
// @Failure 422 {object} apierror.APIError
// @Router /v1/customers/{id}/payments [post]
func (h *CustomersHandler) SettleDebt(c *gin.Context) {
	var req dto.SettleDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cu, err := h.svc.SettleDebt(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// Orders GET /v1/customers/:id/orders
func (h *CustomersHandler) Orders(c *gin.Context) {
	list, err := h.svc.Orders(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
