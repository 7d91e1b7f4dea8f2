package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"veredapos/internal/apierror"
	"veredapos/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingsService }

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get GET /v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Get(c.Request.Context()))
}

// Patch godoc
// @Summary Atualizar configuracoes
// @Description Objeto parcial; as chaves omitidas mantem o valor atual.
// @Tags settings
// @Accept json
// @Produce json
// @Success 200 {object} model.Settings
// @Failure 422 {object} apierror.APIError
// @Router /v1/settings [patch]
func (h *SettingsHandler) Patch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Corpo invalido"))
		return
	}
	// UseNumber keeps the tax rate exact on its way to decimal
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var patch map[string]any
	if err := dec.Decode(&patch); err != nil || patch == nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido"))
		return
	}
	s, err := h.svc.Update(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
