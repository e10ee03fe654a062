package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// MovementHandler provides stock movement endpoints.
type MovementHandler struct {
	*BaseHandler
	service *movement.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *movement.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers movement endpoints.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/reverse", h.Reverse)
	rg.GET("/:id/history", h.History)
	rg.GET("/product/:productId", h.ListByProduct)
	rg.GET("/order-line/:orderLineId", h.ListByOrderLine)
}

// Create records a manual stock movement (delivery, return, regulation).
// POST /api/v1/movements
func (h *MovementHandler) Create(c *gin.Context) {
	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, ok := h.parseBodyID(c, "productId", req.ProductID)
	if !ok {
		return
	}

	typ := movement.Type(req.Type)
	if !typ.IsValid() {
		h.Error(c, apperror.NewValidation("invalid movement type").WithDetail("type", req.Type))
		return
	}

	vat, err := parseVAT(req.VATPercentage)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid VAT percentage").WithDetail("vatPercentage", req.VATPercentage))
		return
	}

	m, err := h.service.Create(c.Request.Context(), movement.CreateParams{
		Quantity:      req.Quantity,
		UnitPrice:     types.NewAmount(req.UnitPrice, types.Currency(req.Currency)),
		VATPercentage: vat,
		Type:          typ,
		ProductID:     productID,
		Reference:     req.Reference,
		Complaint:     req.Complaint,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovement(m))
}

// GetByID retrieves a movement by ID.
// GET /api/v1/movements/:id
func (h *MovementHandler) GetByID(c *gin.Context) {
	movementID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovement(m))
}

// Reverse records the inverse of an existing movement as a regulation.
// POST /api/v1/movements/:id/reverse
func (h *MovementHandler) Reverse(c *gin.Context) {
	movementID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.Reverse(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovement(inv))
}

// History retrieves the audit trail of a movement, newest first.
// GET /api/v1/movements/:id/history
func (h *MovementHandler) History(c *gin.Context) {
	movementID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	records, err := h.service.History(c.Request.Context(), movementID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAuditRecords(records))
}

// ListByProduct retrieves movement history for a product.
// GET /api/v1/movements/product/:productId
func (h *MovementHandler) ListByProduct(c *gin.Context) {
	productID, ok := h.parseID(c, "productId")
	if !ok {
		return
	}

	var req dto.MovementListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := movement.ListFilter{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Type != "" {
		typ := movement.Type(req.Type)
		if !typ.IsValid() {
			h.Error(c, apperror.NewValidation("invalid movement type").WithDetail("type", req.Type))
			return
		}
		filter.Type = &typ
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	ms, err := h.service.ListByProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovements(ms))
}

// ListByOrderLine retrieves movements linked to an order line,
// in insertion order.
// GET /api/v1/movements/order-line/:orderLineId
func (h *MovementHandler) ListByOrderLine(c *gin.Context) {
	orderLineID, ok := h.parseID(c, "orderLineId")
	if !ok {
		return
	}

	ms, err := h.service.ListByOrderLine(c.Request.Context(), orderLineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovements(ms))
}
