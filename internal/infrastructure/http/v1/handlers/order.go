package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents/order"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// OrderHandler provides order document endpoints.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers order endpoints.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/external/:externalId", h.GetByExternalID)
	rg.POST("/:id/record-sale", h.RecordSale)
	rg.DELETE("/:id/lines/:lineId", h.RemoveLine)
	rg.GET("/:id/lines/:lineId/effective-movement", h.EffectiveMovement)
}

// Create imports a shop order with its lines.
// POST /api/v1/document/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params := order.CreateParams{
		ExternalID: req.ExternalID,
		PlacedAt:   req.PlacedAt,
		Comment:    req.Comment,
		Lines:      make([]order.LineParams, 0, len(req.Lines)),
	}
	for i, line := range req.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product ID").
				WithDetail("line", i).
				WithDetail("productId", line.ProductID))
			return
		}
		vat, err := parseVAT(line.VATPercentage)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid VAT percentage").
				WithDetail("line", i).
				WithDetail("vatPercentage", line.VATPercentage))
			return
		}
		params.Lines = append(params.Lines, order.LineParams{
			ProductID:     productID,
			Quantity:      line.Quantity,
			UnitPrice:     types.NewAmount(line.UnitPrice, types.Currency(line.Currency)),
			VATPercentage: vat,
		})
	}

	o, err := h.service.Create(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(o))
}

// GetByID retrieves an order with its lines.
// GET /api/v1/document/orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(o))
}

// GetByExternalID retrieves an order by its shop-side number.
// GET /api/v1/document/orders/external/:externalId
func (h *OrderHandler) GetByExternalID(c *gin.Context) {
	o, err := h.service.GetByExternalID(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(o))
}

// List retrieves orders with date filtering.
// GET /api/v1/document/orders
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.OrderListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := order.ListFilter{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrders(orders))
}

// RecordSale writes the sale movement for every order line.
// POST /api/v1/document/orders/:id/record-sale
func (h *OrderHandler) RecordSale(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	created, err := h.service.RecordSale(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovements(created))
}

// RemoveLine deletes an order line and decouples its movements.
// DELETE /api/v1/document/orders/:id/lines/:lineId
func (h *OrderHandler) RemoveLine(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseID(c, "lineId")
	if !ok {
		return
	}

	if err := h.service.RemoveLine(c.Request.Context(), orderID, lineID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// EffectiveMovement returns the net movement of an order line,
// or 204 when the line has no movements yet.
// GET /api/v1/document/orders/:id/lines/:lineId/effective-movement
func (h *OrderHandler) EffectiveMovement(c *gin.Context) {
	orderID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseID(c, "lineId")
	if !ok {
		return
	}

	m, err := h.service.EffectiveMovement(c.Request.Context(), orderID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if m == nil {
		h.NoContent(c)
		return
	}

	h.OK(c, dto.FromMovement(m))
}

func parseVAT(s string) (types.Decimal, error) {
	if s == "" {
		return types.Decimal{}, nil
	}
	return types.NewDecimalFromString(s)
}
