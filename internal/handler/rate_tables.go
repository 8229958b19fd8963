package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
	"github.com/ctoutbank/portal-outbank-sub005/internal/infra"
	"github.com/ctoutbank/portal-outbank-sub005/internal/middleware"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
)

type RateTablesHandler struct {
	snapshots service.SnapshotService
	isos      service.IsoService
	access    service.AccessService
}

func NewRateTablesHandler(
	snapshots service.SnapshotService,
	isos service.IsoService,
	access service.AccessService,
) *RateTablesHandler {
	return &RateTablesHandler{snapshots: snapshots, isos: isos, access: access}
}

// List godoc
// @Summary      List the ISO's billable rate tables
// @Description  Returns the materialized snapshot rows (base cost, ISO margin and final rate per pricing key) for each validated link. Empty while no link is validated.
// @Tags         rate-tables
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ISO UUID"
// @Success      200 {object} dto.RateTableListResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/isos/{id}/rate-tables [get]
func (h *RateTablesHandler) List(c *gin.Context) {
	isoID, ok := h.authorize(c)
	if !ok {
		return
	}
	resp, err := h.snapshots.ListRateTables(c.Request.Context(), isoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary      Download the ISO's rate sheet as PDF
// @Tags         rate-tables
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "ISO UUID"
// @Success      200 {file} binary
// @Failure      403 {object} apierror.APIError
// @Router       /v1/isos/{id}/rate-tables/pdf [get]
func (h *RateTablesHandler) PDF(c *gin.Context) {
	isoID, ok := h.authorize(c)
	if !ok {
		return
	}
	iso, err := h.isos.Get(c.Request.Context(), isoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	snaps, err := h.snapshots.ListByIso(c.Request.Context(), isoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pdf, err := infra.RenderRateSheet(iso, snaps)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rates-%s.pdf"`, iso.Hostname))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// authorize parses the ISO id and checks ordinary tenant access. Rate tables
// are read-only, so the full-access flag counts here.
func (h *RateTablesHandler) authorize(c *gin.Context) (uuid.UUID, bool) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return uuid.Nil, false
	}
	ok, err := h.access.HasOrdinaryAccess(c.Request.Context(), middleware.GetUser(c), isoID)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, false
	}
	if !ok {
		c.JSON(http.StatusForbidden, apierror.New("access to this tenant is not allowed"))
		return uuid.Nil, false
	}
	return isoID, true
}
