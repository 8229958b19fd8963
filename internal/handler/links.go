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

type LinksHandler struct{ svc service.LinkService }

func NewLinksHandler(svc service.LinkService) *LinksHandler { return &LinksHandler{svc: svc} }

// Create godoc
// @Summary      Create an ISO / cost-table link
// @Description  Links an ISO to a supplier cost table. New links start in draft.
// @Tags         links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateLinkRequest true "Link"
// @Success      201  {object} dto.LinkResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/iso-links [post]
func (h *LinksHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
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

// ListByIso godoc
// @Summary      List an ISO's links
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ISO UUID"
// @Success      200 {object} dto.LinkListResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/isos/{id}/links [get]
func (h *LinksHandler) ListByIso(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	resp, err := h.svc.ListByIso(c.Request.Context(), middleware.GetUser(c), isoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetValidity godoc
// @Summary      Set a link's contract window
// @Description  Sets valid-from / valid-until and the auto-renew flag. Super-operators only.
// @Tags         links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        linkId path string                 true "Link UUID"
// @Param        body   body dto.SetValidityRequest true "Validity window"
// @Success      200 {object} dto.LinkResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/iso-links/{linkId}/validity [post]
func (h *LinksHandler) SetValidity(c *gin.Context) {
	linkID, err := uuid.Parse(c.Param("linkId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid link id"))
		return
	}
	var req dto.SetValidityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetValidity(c.Request.Context(), linkID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
