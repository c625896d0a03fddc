// Package checkout turns a cart snapshot and order options into a draft order
// for the external order service.
package checkout

import (
	"context"
	"fmt"
	"strconv"

	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"

	"github.com/google/uuid"
)

const (
	DefaultQuality = "0.20mm"

	BaseTag       = "3d-print"
	MulticolorTag = "multicolor"
	PriorityTag   = "priority"
	AssistanceTag = "print-assistance"

	MulticolorTitle = "MultiColor Printing"
	PriorityTitle   = "Queue Priority"
)

type Property struct {
	Name  string
	Value string
}

type LineItem struct {
	Title          string
	UnitPriceCents int64
	Quantity       int
	// FileID is uuid.Nil for add-on fee lines.
	FileID     uuid.UUID
	Properties []Property
}

type NoteAttribute struct {
	Name  string
	Value string
}

// DraftOrderInput is the single request sent to the order service.
type DraftOrderInput struct {
	LineItems      []LineItem
	Tags           []string
	NoteAttributes []NoteAttribute
	Note           string
	Email          string
	IdempotencyKey string
}

// DraftOrder is the order service's answer. Totals are as reported remotely,
// shipping included, and are not recomputed here.
type DraftOrder struct {
	ID         string
	Name       string
	InvoiceURL string
	TotalPrice string
	Currency   string
}

// OrderService creates draft orders.
type OrderService interface {
	CreateDraftOrder(ctx context.Context, in DraftOrderInput) (*DraftOrder, error)
}

// Gate checks that the cart can be submitted. Conditions are evaluated in a
// fixed order and the first failure wins, so a cart with both processing and
// failed files reports ErrItemsProcessing.
func Gate(sessionID string, items []models.CartItem) error {
	if sessionID == "" {
		return ErrSessionMissing
	}
	if len(items) == 0 {
		return ErrCartEmpty
	}
	if pricing.HasInFlight(items) {
		return ErrItemsProcessing
	}
	if pricing.HasErrored(items) {
		return ErrItemsErrored
	}
	if len(EligibleItems(items)) == 0 {
		return ErrNoValidItems
	}
	return nil
}

// EligibleItems keeps items whose file finished successfully with a
// positive mass and dimensions recorded. A zero mass counts as missing.
func EligibleItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if pricing.ItemEligible(it) && it.File.MassGrams != nil && *it.File.MassGrams > 0 && it.File.Dimensions != nil {
			out = append(out, it)
		}
	}
	return out
}

// Compose runs the gate and builds the draft order input.
func Compose(sessionID string, items []models.CartItem, opts models.OrderOptions) (DraftOrderInput, error) {
	if err := Gate(sessionID, items); err != nil {
		return DraftOrderInput{}, err
	}
	return DraftOrderInput{
		LineItems:      BuildLineItems(EligibleItems(items), opts),
		Tags:           BuildTags(opts),
		NoteAttributes: BuildNoteAttributes(opts),
		Note:           opts.Comments,
	}, nil
}

func BuildLineItems(items []models.CartItem, opts models.OrderOptions) []LineItem {
	lines := make([]LineItem, 0, len(items)+2)
	for _, it := range items {
		lines = append(lines, LineItem{
			Title:          it.File.FileName,
			UnitPriceCents: pricing.UnitPriceCents(it),
			Quantity:       it.Quantity,
			FileID:         it.File.ID,
			Properties:     itemProperties(it),
		})
	}
	if opts.Multicolor {
		lines = append(lines, LineItem{Title: MulticolorTitle, UnitPriceCents: pricing.MulticolorCents, Quantity: 1})
	}
	if opts.Priority {
		lines = append(lines, LineItem{Title: PriorityTitle, UnitPriceCents: pricing.PriorityCents, Quantity: 1})
	}
	return lines
}

func itemProperties(it models.CartItem) []Property {
	props := []Property{
		{Name: "Material", Value: it.Material},
		{Name: "Color", Value: it.Color},
		{Name: "Quality", Value: DefaultQuality},
		{Name: "Infill", Value: strconv.Itoa(it.Infill) + "%"},
	}
	if m := it.File.MassGrams; m != nil {
		props = append(props, Property{Name: "Mass", Value: strconv.FormatFloat(*m, 'f', 2, 64) + "g"})
	}
	if d := it.File.Dimensions; d != nil {
		props = append(props, Property{Name: "Dimensions", Value: fmt.Sprintf("%.1f x %.1f x %.1f mm", d.X, d.Y, d.Z)})
	}
	props = append(props, Property{Name: "File ID", Value: it.File.ID.String()})
	return props
}

func BuildTags(opts models.OrderOptions) []string {
	tags := []string{BaseTag}
	if opts.Multicolor {
		tags = append(tags, MulticolorTag)
	}
	if opts.Priority {
		tags = append(tags, PriorityTag)
	}
	if opts.Assistance {
		tags = append(tags, AssistanceTag)
	}
	return tags
}

func BuildNoteAttributes(opts models.OrderOptions) []NoteAttribute {
	attrs := make([]NoteAttribute, 0, 4)
	if opts.Comments != "" {
		attrs = append(attrs, NoteAttribute{Name: "Comments", Value: opts.Comments})
	}
	attrs = append(attrs,
		NoteAttribute{Name: "MultiColor", Value: yesNo(opts.Multicolor)},
		NoteAttribute{Name: "Priority", Value: yesNo(opts.Priority)},
		NoteAttribute{Name: "Print Assistance", Value: yesNo(opts.Assistance)},
	)
	return attrs
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
