package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ProductHandler provides product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers product endpoints.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/deletion-mark", h.SetDeletionMark)
	rg.GET("/:id/variants", h.ListVariants)
	rg.GET("/barcode/:barcode", h.GetByBarcode)
}

// Create handles product creation.
// POST /api/v1/catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := product.NewProduct(req.Code, req.Name, product.Kind(req.Kind))
	p.Barcode = req.Barcode
	p.VariantMasterID = req.VariantMasterID
	p.Description = req.Description
	p.Prices = req.ToPrices()

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromProduct(p))
}

// GetByID retrieves a product by ID.
// GET /api/v1/catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// Update handles product modification with optimistic locking.
// PUT /api/v1/catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Prices != nil {
		p.Prices = req.ToPrices()
	}
	p.Version = req.Version

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// SetDeletionMark marks or unmarks a product for deletion.
// POST /api/v1/catalog/products/:id/deletion-mark
func (h *ProductHandler) SetDeletionMark(c *gin.Context) {
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(c.Request.Context(), productID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List retrieves products with filtering and pagination.
// GET /api/v1/catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	if orderBy := c.Query("orderBy"); orderBy != "" {
		filter.OrderBy = orderBy
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromProducts(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ListVariants retrieves all variants of a variant master.
// GET /api/v1/catalog/products/:id/variants
func (h *ProductHandler) ListVariants(c *gin.Context) {
	productID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	variants, err := h.service.ListVariants(c.Request.Context(), productID.String())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProducts(variants))
}

// GetByBarcode retrieves a product by barcode.
// GET /api/v1/catalog/products/barcode/:barcode
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	p, err := h.service.FindByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}
