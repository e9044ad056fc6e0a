package handler

import (
	rateapp "github.com/delivery/backend/internal/application/rate"
	"github.com/delivery/backend/internal/domain/rate"
	"github.com/delivery/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateHandler handles rate resolution API endpoints
type RateHandler struct {
	BaseHandler
	rateService *rateapp.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *rateapp.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
	}
}

// Resolve returns the effective rate for one unit of work on an estimate.
// GET /estimates/:id/rates/resolve?line_item_id=&person_id=&role_id=&as_of=YYYY-MM-DD
func (h *RateHandler) Resolve(c *gin.Context) {
	estimateID, ok := h.bindEstimateID(c)
	if !ok {
		return
	}

	var query dto.ResolveRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	req, err := toResolveRequest(estimateID, query)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.rateService.Resolve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListEstimateRates resolves every line item of an estimate.
// GET /estimates/:id/rates
func (h *RateHandler) ListEstimateRates(c *gin.Context) {
	estimateID, ok := h.bindEstimateID(c)
	if !ok {
		return
	}

	result, err := h.rateService.ResolveEstimate(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Recalculate writes resolved rates back onto the estimate's non-manual line items.
// POST /estimates/:id/rates/recalculate
func (h *RateHandler) Recalculate(c *gin.Context) {
	estimateID, ok := h.bindEstimateID(c)
	if !ok {
		return
	}

	result, err := h.rateService.RecalculateEstimate(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListOverrides lists an estimate's rate overrides with subject names.
// GET /estimates/:id/rate-overrides
func (h *RateHandler) ListOverrides(c *gin.Context) {
	estimateID, ok := h.bindEstimateID(c)
	if !ok {
		return
	}

	result, err := h.rateService.ListOverrides(c.Request.Context(), estimateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *RateHandler) bindEstimateID(c *gin.Context) (uuid.UUID, bool) {
	var path dto.EstimatePathRequest
	if err := c.ShouldBindUri(&path); err != nil {
		h.BindError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(path.ID)
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID")
		return uuid.Nil, false
	}
	return id, true
}

func toResolveRequest(estimateID uuid.UUID, q dto.ResolveRateQuery) (rateapp.ResolveRequest, error) {
	req := rateapp.ResolveRequest{EstimateID: estimateID}

	var err error
	if req.LineItemID, err = parseOptionalUUID(q.LineItemID); err != nil {
		return req, err
	}
	if req.PersonID, err = parseOptionalUUID(q.PersonID); err != nil {
		return req, err
	}
	if req.RoleID, err = parseOptionalUUID(q.RoleID); err != nil {
		return req, err
	}
	if q.AsOf != "" {
		asOf, err := rate.ParseDate(q.AsOf)
		if err != nil {
			return req, err
		}
		req.AsOf = &asOf
	}
	return req, nil
}
