package dto

import (
	"time"

	"stockledger/internal/domain/documents/order"
)

// OrderLineRequest is one line of an incoming order.
type OrderLineRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Quantity      int64  `json:"quantity" binding:"required,min=1"`
	UnitPrice     int64  `json:"unitPrice" binding:"min=0"`
	Currency      string `json:"currency" binding:"required,len=3"`
	VATPercentage string `json:"vatPercentage"`
}

// CreateOrderRequest for importing a shop order.
type CreateOrderRequest struct {
	ExternalID string             `json:"externalId" binding:"required"`
	PlacedAt   time.Time          `json:"placedAt" binding:"required"`
	Comment    string             `json:"comment"`
	Lines      []OrderLineRequest `json:"lines" binding:"required,min=1"`
}

// OrderListRequest for order listings.
type OrderListRequest struct {
	FromDate *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}

// OrderLineResponse is the API form of an order line.
type OrderLineResponse struct {
	LineID        string `json:"lineId"`
	LineNo        int    `json:"lineNo"`
	ProductID     string `json:"productId"`
	ProductNumber string `json:"productNumber"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unitPrice"`
	Currency      string `json:"currency"`
	VATPercentage string `json:"vatPercentage"`
}

// OrderResponse is the API form of an order.
type OrderResponse struct {
	BaseResponse
	ExternalID string              `json:"externalId"`
	Date       time.Time           `json:"date"`
	Comment    string              `json:"comment,omitempty"`
	Lines      []OrderLineResponse `json:"lines"`
}

// FromOrder creates OrderResponse from an order.
func FromOrder(o *order.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, OrderLineResponse{
			LineID:        line.LineID.String(),
			LineNo:        line.LineNo,
			ProductID:     line.ProductID.String(),
			ProductNumber: line.ProductNumber,
			Quantity:      line.Quantity,
			UnitPrice:     int64(line.UnitPrice),
			Currency:      string(line.Currency),
			VATPercentage: line.VATPercentage.String(),
		})
	}

	return OrderResponse{
		BaseResponse: FromBaseDocument(o.BaseDocument),
		ExternalID:   o.ExternalID,
		Date:         o.Date,
		Comment:      o.Comment,
		Lines:        lines,
	}
}

// FromOrders converts a slice of orders.
func FromOrders(os []*order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for _, o := range os {
		out = append(out, FromOrder(o))
	}
	return out
}
