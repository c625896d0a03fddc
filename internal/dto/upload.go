package dto

import "github.com/google/uuid"

// UploadRequest registers a file whose bytes are already in object storage.
type UploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileSize int64  `json:"fileSize" binding:"gte=0"`
	URL      string `json:"url" binding:"required,url"`
	Material string `json:"material"`
	Color    string `json:"color"`
	Infill   *int   `json:"infill" binding:"omitempty,gte=0,lte=100"`
}

type UploadResponse struct {
	FileID     uuid.UUID `json:"fileId"`
	CartItemID uuid.UUID `json:"cartItemId"`
	Status     string    `json:"status"`
}
