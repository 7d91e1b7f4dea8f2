package handler

import (
	"net/http"
	"time"

	"veredapos/internal/dto"
	"veredapos/internal/middleware"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	svc      service.ReportService
	settings service.SettingsService
	pdf      DocumentRenderer
}

func NewReportsHandler(svc service.ReportService, settings service.SettingsService, pdf DocumentRenderer) *ReportsHandler {
	return &ReportsHandler{svc: svc, settings: settings, pdf: pdf}
}

// Metrics GET /v1/reports/metrics
func (h *ReportsHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Metrics(c.Request.Context()))
}

// ShiftClosing godoc
// @Summary Fecho de caixa
// @Tags reports
// @Produce json
// @Produce application/pdf
// @Param day query string false "YYYY-MM-DD"
// @Param operator query string false "Operador"
// @Param format query string false "json | pdf"
// @Success 200 {object} model.ShiftSummary
// @Router /v1/reports/shift-closing [get]
func (h *ReportsHandler) ShiftClosing(c *gin.Context) {
	var q dto.ShiftClosingQuery
	if !bindQuery(c, &q) {
		return
	}
	ctx := c.Request.Context()
	operator := q.Operator
	if operator == "" {
		if claims := middleware.GetClaims(c); claims != nil {
			operator = claims.Name
		}
	}
	sum := h.svc.ShiftClosing(ctx, parseDay(q.Day), operator)
	if q.Format != "pdf" {
		c.JSON(http.StatusOK, sum)
		return
	}
	pdf, err := h.pdf.ShiftClosing(sum, h.settings.Get(ctx))
	if err != nil {
		_ = c.Error(err)
		return
	}
	sendPDF(c, "fecho-"+sum.Day.Format(time.DateOnly)+".pdf", pdf)
}

// VerifyLedger GET /v1/reports/ledger
func (h *ReportsHandler) VerifyLedger(c *gin.Context) {
	brk := h.svc.VerifyLedger(c.Request.Context())
	if brk == nil {
		c.JSON(http.StatusOK, dto.LedgerVerifyResponse{Valid: true})
		return
	}
	c.JSON(http.StatusOK, dto.LedgerVerifyResponse{
		Series:        brk.Series,
		InvoiceNumber: brk.InvoiceNumber,
		Reason:        brk.Reason,
	})
}
