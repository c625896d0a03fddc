package dto

import (
	"time"

	"fabrication-service/internal/models"

	"github.com/google/uuid"
)

// CartItem is one cart line with the current view of its file.
type CartItem struct {
	ID           uuid.UUID          `json:"id"`
	Quantity     int                `json:"quantity"`
	Material     string             `json:"material"`
	Color        string             `json:"color"`
	Infill       int                `json:"infill"`
	UnitPrice    *int64             `json:"unitPrice"`
	CreatedAt    time.Time          `json:"createdAt"`
	FileID       uuid.UUID          `json:"fileId"`
	FileName     string             `json:"fileName"`
	FileSize     int64              `json:"fileSize"`
	StorageURL   string             `json:"storageUrl"`
	Status       models.FileStatus  `json:"status"`
	MassGrams    *float64           `json:"massGrams"`
	Dimensions   *models.Dimensions `json:"dimensions"`
	ErrorMessage *string            `json:"errorMessage"`
}

type CartResponse struct {
	Items []CartItem `json:"items"`
}

type UpdateCartItemRequest struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity *int      `json:"quantity"`
	Color    *string   `json:"color"`
}

type UpdateCartItemResponse struct {
	Item CartItem `json:"item"`
}

type DeleteCartItemResponse struct {
	Success bool `json:"success"`
}

type CartSummaryResponse struct {
	Subtotal        string `json:"subtotal"`
	Addons          string `json:"addons"`
	Total           string `json:"total"`
	SubtotalCents   int64  `json:"subtotalCents"`
	AddonCents      int64  `json:"addonCents"`
	TotalCents      int64  `json:"totalCents"`
	ItemCount       int    `json:"itemCount"`
	EligibleCount   int    `json:"eligibleCount"`
	HasProcessing   bool   `json:"hasProcessing"`
	HasErrors       bool   `json:"hasErrors"`
	CheckoutReady   bool   `json:"checkoutReady"`
	ProductionDays  int    `json:"productionDays"`
	OfferPriority   bool   `json:"offerPriority"`
	PrioritySavings int    `json:"prioritySavingsDays"`
}

func FromCartItem(it models.CartItem) CartItem {
	return CartItem{
		ID:           it.ID,
		Quantity:     it.Quantity,
		Material:     it.Material,
		Color:        it.Color,
		Infill:       it.Infill,
		UnitPrice:    it.UnitPriceCents,
		CreatedAt:    it.CreatedAt,
		FileID:       it.File.ID,
		FileName:     it.File.FileName,
		FileSize:     it.File.FileSize,
		StorageURL:   it.File.StorageURL,
		Status:       it.File.Status,
		MassGrams:    it.File.MassGrams,
		Dimensions:   it.File.Dimensions,
		ErrorMessage: it.File.ErrorMessage,
	}
}

// ToModel rebuilds the model view of a cart line, as seen by clients.
func (c CartItem) ToModel() models.CartItem {
	return models.CartItem{
		ID:             c.ID,
		UploadedFileID: c.FileID,
		Quantity:       c.Quantity,
		Material:       c.Material,
		Color:          c.Color,
		Infill:         c.Infill,
		UnitPriceCents: c.UnitPrice,
		CreatedAt:      c.CreatedAt,
		File: models.UploadedFile{
			ID:           c.FileID,
			FileName:     c.FileName,
			FileSize:     c.FileSize,
			StorageURL:   c.StorageURL,
			Status:       c.Status,
			MassGrams:    c.MassGrams,
			Dimensions:   c.Dimensions,
			ErrorMessage: c.ErrorMessage,
		},
	}
}

func FromCartItems(items []models.CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, FromCartItem(it))
	}
	return out
}
