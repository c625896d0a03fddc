package models

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus is the processing state of an uploaded model, stored as text.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusSuccess    FileStatus = "success"
	FileStatusError      FileStatus = "error"
)

func (s FileStatus) Valid() bool {
	switch s {
	case FileStatusPending, FileStatusProcessing, FileStatusSuccess, FileStatusError:
		return true
	}
	return false
}

// Terminal reports whether the worker has finished with the file.
func (s FileStatus) Terminal() bool {
	return s == FileStatusSuccess || s == FileStatusError
}

// InFlight reports whether the file is still waiting on the worker.
func (s FileStatus) InFlight() bool {
	return s == FileStatusPending || s == FileStatusProcessing
}

// Dimensions is the bounding box of a model in millimetres.
type Dimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type UploadedFile struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID    string      `gorm:"type:text;not null;index"`
	FileName     string      `gorm:"type:text;not null"`
	FileSize     int64       `gorm:"not null;default:0"`
	StorageURL   string      `gorm:"type:text;not null"`
	Status       FileStatus  `gorm:"type:text;not null;default:'pending';index"`
	MassGrams    *float64    `gorm:"type:double precision"`
	Dimensions   *Dimensions `gorm:"type:jsonb;serializer:json"`
	ErrorMessage *string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }

type CartItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID      string    `gorm:"type:text;not null;index"`
	UploadedFileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_uploaded_file"`
	Quantity       int       `gorm:"type:int;not null;default:1"`
	Material       string    `gorm:"type:text;not null"`
	Color          string    `gorm:"type:text;not null"`
	Infill         int       `gorm:"type:int;not null;default:20"`
	UnitPriceCents *int64    // manual override, wins over the mass-based price

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	File UploadedFile `gorm:"foreignKey:UploadedFileID;constraint:OnDelete:CASCADE"`
}

func (CartItem) TableName() string { return "cart_items" }

// OrderOptions are the order-level add-ons chosen on the cart page.
type OrderOptions struct {
	Comments   string `json:"comments,omitempty"`
	Multicolor bool   `json:"multicolor"`
	Priority   bool   `json:"priority"`
	Assistance bool   `json:"assistance"`
}
