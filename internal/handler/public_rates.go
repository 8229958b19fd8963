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

// PublicRatesHandler serves the partner-facing API. Authentication is the
// x-api-key header (APIKeyAuth middleware); the key itself scopes the tenant,
// so there is no :id in the route and no cross-tenant reach.
type PublicRatesHandler struct{ svc service.PublicRateService }

func NewPublicRatesHandler(svc service.PublicRateService) *PublicRatesHandler {
	return &PublicRatesHandler{svc: svc}
}

// UpdateMargins godoc
// @Summary      Update ISO margins over the partner API
// @Description  Per-item upsert against existing billable snapshots: margin_iso is replaced and taxa_final recomputed. Items whose pricing key has no snapshot fail individually; one failing item never fails the batch.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        x-api-key header string                  true "Partner API key"
// @Param        body      body   dto.PublicMarginRequest true "Margin updates"
// @Success      200 {object} dto.PublicMarginResponse
// @Failure      401 {object} apierror.APIError
// @Router       /public/rates/margin [put]
func (h *PublicRatesHandler) UpdateMargins(c *gin.Context) {
	isoID := middleware.GetAPIKeyIso(c)
	if isoID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, apierror.New("missing api key context"))
		return
	}
	var req dto.PublicMarginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateMargins(c.Request.Context(), isoID, middleware.GetAPIKeyHash(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
