package handler

import (
	"net/http"

	"veredapos/internal/apierror"
	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/service"
	"veredapos/internal/worker"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	svc       service.OrderService
	catalog   service.CatalogService
	customers service.CustomerService
	settings  service.SettingsService
	pdf       DocumentRenderer
}

func NewOrdersHandler(svc service.OrderService, catalog service.CatalogService, customers service.CustomerService, settings service.SettingsService, pdf DocumentRenderer) *OrdersHandler {
	return &OrdersHandler{svc: svc, catalog: catalog, customers: customers, settings: settings, pdf: pdf}
}

// Create godoc
// @Summary Abrir pedido
// @Tags orders
// @Accept json
// @Produce json
// @Param body body dto.CreateOrderRequest true "Pedido"
// @Success 201 {object} model.Order
// @Router /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.CreateOrder(c.Request.Context(), req.TableID, req.SubAccountName, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// List GET /v1/orders?status=&table_id=&day=
func (h *OrdersHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter := service.OrderFilter{Status: model.OrderStatus(q.Status), TableID: q.TableID}
	if q.Day != "" {
		day := parseDay(q.Day)
		filter.Day = &day
	}
	c.JSON(http.StatusOK, h.svc.ListOrders(c.Request.Context(), filter))
}

// Get GET /v1/orders/:id
func (h *OrdersHandler) Get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// AddItem godoc
// @Summary Adicionar item
// @Description Sem orderId, usa o pedido ativo ou o pedido aberto da mesa; abre um novo se nao houver.
// @Tags orders
// @Accept json
// @Produce json
// @Param body body dto.AddItemRequest true "Item"
// @Success 200 {object} model.Order
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/orders/items [post]
func (h *OrdersHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	o, err := h.svc.AddItem(c.Request.Context(), service.AddItemInput{
		OrderID: req.OrderID, TableID: req.TableID, DishID: req.DishID, Quantity: qty, Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Transfer POST /v1/orders/:id/transfer
func (h *OrdersHandler) Transfer(c *gin.Context) {
	var req dto.TransferOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.TransferOrder(c.Request.Context(), c.Param("id"), req.TableID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Checkout godoc
// @Summary Fechar conta
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Pedido"
// @Param body body dto.CheckoutRequest true "Pagamento"
// @Success 200 {object} model.Order
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/orders/{id}/checkout [post]
func (h *OrdersHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.Checkout(c.Request.Context(), c.Param("id"), req.PaymentMethod, req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// AmendPayment PATCH /v1/orders/:id/payment-method
func (h *OrdersHandler) AmendPayment(c *gin.Context) {
	var req dto.AmendPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.AmendPaymentMethod(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// AmendCustomer PATCH /v1/orders/:id/customer
func (h *OrdersHandler) AmendCustomer(c *gin.Context) {
	var req dto.AmendCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.AmendCustomer(c.Request.Context(), c.Param("id"), req.CustomerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ItemStatus PATCH /v1/orders/:id/items/:index/status
func (h *OrdersHandler) ItemStatus(c *gin.Context) {
	idx, ok := intParam(c, "index")
	if !ok {
		return
	}
	var req dto.ItemStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	o, err := h.svc.MarkItemStatus(c.Request.Context(), c.Param("id"), idx, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Served POST /v1/orders/:id/served
func (h *OrdersHandler) Served(c *gin.Context) {
	o, err := h.svc.MarkOrderServed(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Selection GET /v1/selection
func (h *OrdersHandler) Selection(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Selection(c.Request.Context()))
}

// SetSelection PUT /v1/selection
func (h *OrdersHandler) SetSelection(c *gin.Context) {
	var req dto.SelectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.SetActiveTable(ctx, req.TableID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.SetActiveOrder(ctx, req.OrderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Selection(ctx))
}

// PreCheck GET /v1/orders/:id/precheck.pdf
func (h *OrdersHandler) PreCheck(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.svc.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !o.IsOpen() {
		respondError(c, service.ErrOrderClosed)
		return
	}
	pdf, err := h.pdf.PreCheck(o, h.catalog.ListDishes(ctx, ""), h.settings.Get(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, "consulta-"+o.ID+".pdf", pdf)
}

// Invoice GET /v1/orders/:id/invoice.pdf
//
// Rendered on demand from the stored order; the hash is printed as issued.
func (h *OrdersHandler) Invoice(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.svc.GetOrder(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if o.IsOpen() || o.InvoiceNumber == nil {
		c.JSON(http.StatusConflict, apierror.New(service.ErrOrderNotClosed.Error()))
		return
	}
	var customer *model.Customer
	if o.CustomerID != nil {
		// a deleted customer still gets an invoice, without the name block
		customer, _ = h.customers.Get(ctx, *o.CustomerID)
	}
	pdf, err := h.pdf.Invoice(o, h.catalog.ListDishes(ctx, ""), h.settings.Get(ctx), customer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, worker.InvoiceFileName(*o.InvoiceNumber), pdf)
}
