package dto

import (
	"encoding/json"
	"time"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/movement"
)

// CreateMovementRequest for recording a manual stock movement.
type CreateMovementRequest struct {
	Quantity      int64  `json:"quantity" binding:"required"`
	UnitPrice     int64  `json:"unitPrice"`
	Currency      string `json:"currency" binding:"required,len=3"`
	VATPercentage string `json:"vatPercentage"`
	Type          string `json:"type" binding:"required"`
	ProductID     string `json:"productId" binding:"required"`
	Reference     string `json:"reference"`
	Complaint     bool   `json:"complaint"`
}

// MovementListRequest for movement history queries.
type MovementListRequest struct {
	Type     string     `form:"type"`
	FromDate *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit    int        `form:"limit"`
	Offset   int        `form:"offset"`
}

// MoneyResponse is one monetary value in minor units.
type MoneyResponse struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

func moneyOrNil(amount types.Amount, err error) *MoneyResponse {
	if err != nil {
		return nil
	}
	return &MoneyResponse{Value: int64(amount.Value), Currency: string(amount.Currency)}
}

// MovementResponse is the API form of a stock movement.
// All monetary fields are excl. VAT unless suffixed InclVat; they are
// omitted entirely when the record has no currency yet.
type MovementResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Quantity  int64  `json:"quantity"`
	Complaint bool   `json:"complaint"`
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type"`

	Currency      string `json:"currency,omitempty"`
	VATPercentage string `json:"vatPercentage"`

	Price            *MoneyResponse `json:"price,omitempty"`
	RetailPrice      *MoneyResponse `json:"retailPrice,omitempty"`
	TotalPrice       *MoneyResponse `json:"totalPrice,omitempty"`
	TotalRetailPrice *MoneyResponse `json:"totalRetailPrice,omitempty"`
	Discount         *MoneyResponse `json:"discount,omitempty"`
	TotalDiscount    *MoneyResponse `json:"totalDiscount,omitempty"`

	PriceInclVat            *MoneyResponse `json:"priceInclVat,omitempty"`
	RetailPriceInclVat      *MoneyResponse `json:"retailPriceInclVat,omitempty"`
	TotalPriceInclVat       *MoneyResponse `json:"totalPriceInclVat,omitempty"`
	TotalRetailPriceInclVat *MoneyResponse `json:"totalRetailPriceInclVat,omitempty"`
	DiscountInclVat         *MoneyResponse `json:"discountInclVat,omitempty"`
	TotalDiscountInclVat    *MoneyResponse `json:"totalDiscountInclVat,omitempty"`

	ProductID        string  `json:"productId"`
	OrderLineID      *string `json:"orderLineId,omitempty"`
	OrderLineRemoved bool    `json:"orderLineRemoved,omitempty"`
}

// FromMovement creates MovementResponse from a movement record.
func FromMovement(m *movement.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:               m.GetID().String(),
		CreatedAt:        m.CreatedAt(),
		UpdatedAt:        m.UpdatedAt(),
		Quantity:         m.Quantity(),
		Complaint:        m.Complaint(),
		Reference:        m.Reference(),
		Type:             string(m.Type()),
		Currency:         string(m.Currency()),
		VATPercentage:    m.VATPercentage().String(),
		ProductID:        m.ProductID().String(),
		OrderLineRemoved: m.OrderLineRemoved(),

		Price:            moneyOrNil(m.Price()),
		RetailPrice:      moneyOrNil(m.RetailPrice()),
		TotalPrice:       moneyOrNil(m.TotalPrice()),
		TotalRetailPrice: moneyOrNil(m.TotalRetailPrice()),
		Discount:         moneyOrNil(m.Discount()),
		TotalDiscount:    moneyOrNil(m.TotalDiscount()),

		PriceInclVat:            moneyOrNil(m.PriceInclVAT()),
		RetailPriceInclVat:      moneyOrNil(m.RetailPriceInclVAT()),
		TotalPriceInclVat:       moneyOrNil(m.TotalPriceInclVAT()),
		TotalRetailPriceInclVat: moneyOrNil(m.TotalRetailPriceInclVAT()),
		DiscountInclVat:         moneyOrNil(m.DiscountInclVAT()),
		TotalDiscountInclVat:    moneyOrNil(m.TotalDiscountInclVAT()),
	}

	if lineID := m.OrderLineID(); lineID != nil {
		s := lineID.String()
		resp.OrderLineID = &s
	}

	return resp
}

// AuditRecordResponse is one audit trail entry of a movement.
type AuditRecordResponse struct {
	Action    string          `json:"action"`
	UserID    string          `json:"userId,omitempty"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FromAuditRecords converts a movement audit trail.
func FromAuditRecords(records []movement.AuditRecord) []AuditRecordResponse {
	out := make([]AuditRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, AuditRecordResponse{
			Action:    r.Action,
			UserID:    r.UserID,
			Changes:   r.Changes,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// FromMovements converts a slice of movement records.
func FromMovements(ms []*movement.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMovement(m))
	}
	return out
}
