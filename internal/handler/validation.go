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

type ValidationHandler struct{ svc service.ValidationService }

func NewValidationHandler(svc service.ValidationService) *ValidationHandler {
	return &ValidationHandler{svc: svc}
}

// Transition godoc
// @Summary      Transition a link's validation status
// @Description  Moves one link through the approval state machine. Entering validated materializes billable snapshots; leaving it tears them down. Illegal targets return 400 with the full valid-transition list.
// @Tags         validation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "ISO UUID"
// @Param        body body dto.TransitionRequest  true "Transition"
// @Success      200  {object} dto.TransitionResponse
// @Failure      400  {object} apierror.TransitionError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/isos/{id}/validation [post]
func (h *ValidationHandler) Transition(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var req dto.TransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transition(c.Request.Context(), middleware.GetUser(c), isoID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BatchTransition godoc
// @Summary      Batch-transition links
// @Description  Applies the same transition to every link in the set. Ineligible links are counted as skipped, never individually errored.
// @Tags         validation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                      true "ISO UUID"
// @Param        body body dto.BatchTransitionRequest  true "Batch transition"
// @Success      200  {object} dto.BatchTransitionResponse
// @Failure      403  {object} apierror.APIError
// @Router       /v1/isos/{id}/validation/batch [post]
func (h *ValidationHandler) BatchTransition(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var req dto.BatchTransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BatchTransition(c.Request.Context(), middleware.GetUser(c), isoID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Validation history ledger
// @Description  Append-only transition ledger for the ISO, optionally filtered by link. Super-operators only.
// @Tags         validation
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string true  "ISO UUID"
// @Param        link_id query string false "Filter by link UUID"
// @Success      200 {array}  dto.ValidationHistoryResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/isos/{id}/validation-history [get]
func (h *ValidationHandler) History(c *gin.Context) {
	isoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid ISO id"))
		return
	}
	var linkID *uuid.UUID
	if raw := c.Query("link_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid link_id filter"))
			return
		}
		linkID = &id
	}
	resp, err := h.svc.History(c.Request.Context(), middleware.GetUser(c), isoID, linkID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
