package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
	"github.com/ctoutbank/portal-outbank-sub005/internal/dto"
	"github.com/ctoutbank/portal-outbank-sub005/internal/middleware"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

type MarginsHandler struct{ svc service.MarginService }

func NewMarginsHandler(svc service.MarginService) *MarginsHandler {
	return &MarginsHandler{svc: svc}
}

// Set godoc
// @Summary      Set a single ISO margin
// @Description  Upserts the margin for one (brand, modality, channel) key. When the link is validated, the billable snapshot is recomputed in the same transaction.
// @Tags         margins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                true "ISO UUID"
// @Param        body body dto.SetMarginRequest  true "Margin upsert"
// @Success      200  {object} dto.MarginResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/isos/{id}/margins [put]
func (h *MarginsHandler) Set(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var req dto.SetMarginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetMargin(c.Request.Context(), middleware.GetUser(c), isoID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BatchSet godoc
// @Summary      Batch-set ISO margins
// @Description  Validates every item independently and applies all valid ones in a single transaction; invalid items are reported per-index and never abort the rest.
// @Tags         margins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "ISO UUID"
// @Param        body body dto.BatchMarginsRequest true "Margin batch"
// @Success      200  {object} dto.BatchMarginsResponse
// @Failure      403  {object} apierror.APIError
// @Router       /v1/isos/{id}/margins [patch]
func (h *MarginsHandler) BatchSet(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var req dto.BatchMarginsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BatchSetMargins(c.Request.Context(), middleware.GetUser(c), isoID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
