package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

type IsosHandler struct{ svc service.IsoService }

func NewIsosHandler(svc service.IsoService) *IsosHandler { return &IsosHandler{svc: svc} }

func (h *IsosHandler) Create(c *gin.Context) {
	var req dto.CreateIsoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *IsosHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetOutbankMargin godoc
// @Summary      Configure the platform margin for an ISO
// @Description  Sets the platform-side margin that must be configured (and positive) before any of the ISO's links can be validated.
// @Tags         isos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "ISO UUID"
// @Param        body body dto.SetOutbankMarginRequest  true "Margin"
// @Success      200 {object} dto.IsoResponse
// @Failure      400 {object} apierror.ValidationError
// @Router       /v1/isos/{id}/outbank-margin [patch]
func (h *IsosHandler) SetOutbankMargin(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var req dto.SetOutbankMarginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetOutbankMargin(c.Request.Context(), isoID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
