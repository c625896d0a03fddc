package dto

import "fabrication-service/internal/models"

type CheckoutRequest struct {
	Comments   string `json:"comments"`
	Multicolor bool   `json:"multicolor"`
	Priority   bool   `json:"priority"`
	Assistance bool   `json:"assistance"`
	Email      string `json:"email" binding:"omitempty,email"`
}

func (r CheckoutRequest) Options() models.OrderOptions {
	return models.OrderOptions{
		Comments:   r.Comments,
		Multicolor: r.Multicolor,
		Priority:   r.Priority,
		Assistance: r.Assistance,
	}
}

type CheckoutResponse struct {
	Success        bool   `json:"success"`
	DraftOrderID   string `json:"draftOrderId"`
	DraftOrderName string `json:"draftOrderName"`
	InvoiceURL     string `json:"invoiceUrl"`
	TotalPrice     string `json:"totalPrice"`
	Currency       string `json:"currency"`
	IdempotencyKey string `json:"idempotencyKey"`
}
