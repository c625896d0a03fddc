// Package filestatus tracks the processing lifecycle of uploaded models.
//
// A file starts pending, moves to processing while the worker computes its
// physical properties, and ends in success or error. Reports are applied
// last-writer-wins: the machine does not reject out-of-order reports, so a
// late pending report will move a finished file back. Apply reports such a
// regression to the caller, which is expected to log it.
package filestatus

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"fabrication-service/internal/models"

	"github.com/google/uuid"
)

// DefaultErrorMessage is stored when the worker reports an error without text.
const DefaultErrorMessage = "processing failed"

var ErrMalformedEvent = errors.New("malformed status event")

// Report is one validated status update for a file.
type Report struct {
	FileID       uuid.UUID
	Status       models.FileStatus
	MassGrams    *float64
	Dimensions   *models.Dimensions
	ErrorMessage *string
}

// wireReport is the JSON shape shared by the worker and the push channel.
type wireReport struct {
	FileID       string             `json:"fileId"`
	Status       string             `json:"status"`
	MassGrams    *float64           `json:"massGrams,omitempty"`
	Dimensions   *models.Dimensions `json:"dimensions,omitempty"`
	ErrorMessage *string            `json:"errorMessage,omitempty"`
}

// ParseReport decodes and validates a status report.
func ParseReport(data []byte) (Report, error) {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return w.validate()
}

func (w wireReport) validate() (Report, error) {
	id, err := uuid.Parse(w.FileID)
	if err != nil {
		return Report{}, fmt.Errorf("%w: fileId %q", ErrMalformedEvent, w.FileID)
	}
	r := Report{FileID: id, Status: models.FileStatus(w.Status)}
	if !r.Status.Valid() {
		return Report{}, fmt.Errorf("%w: status %q", ErrMalformedEvent, w.Status)
	}

	switch r.Status {
	case models.FileStatusSuccess:
		if w.MassGrams == nil || w.Dimensions == nil {
			return Report{}, fmt.Errorf("%w: success without mass or dimensions", ErrMalformedEvent)
		}
		if !validMeasure(*w.MassGrams) || !validMeasure(w.Dimensions.X) ||
			!validMeasure(w.Dimensions.Y) || !validMeasure(w.Dimensions.Z) {
			return Report{}, fmt.Errorf("%w: invalid measurements", ErrMalformedEvent)
		}
		r.MassGrams = w.MassGrams
		r.Dimensions = w.Dimensions
	case models.FileStatusError:
		msg := DefaultErrorMessage
		if w.ErrorMessage != nil && *w.ErrorMessage != "" {
			msg = *w.ErrorMessage
		}
		r.ErrorMessage = &msg
	}
	return r, nil
}

// MarshalJSON encodes the report in its wire form.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

func (r Report) wire() wireReport {
	return wireReport{
		FileID:       r.FileID.String(),
		Status:       string(r.Status),
		MassGrams:    r.MassGrams,
		Dimensions:   r.Dimensions,
		ErrorMessage: r.ErrorMessage,
	}
}

func validMeasure(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Apply overwrites the status-owned fields of f with the report. Measurements
// are kept only for success and the error message only for error, so the
// invariant between status and fields holds after every call. The returned
// flag is true when a terminal file was moved back to pending or processing.
func Apply(f *models.UploadedFile, r Report) (regressed bool) {
	regressed = f.Status.Terminal() && r.Status.InFlight()

	f.Status = r.Status
	f.MassGrams = nil
	f.Dimensions = nil
	f.ErrorMessage = nil

	switch r.Status {
	case models.FileStatusSuccess:
		if r.MassGrams != nil {
			m := *r.MassGrams
			f.MassGrams = &m
		}
		if r.Dimensions != nil {
			d := *r.Dimensions
			f.Dimensions = &d
		}
	case models.FileStatusError:
		msg := DefaultErrorMessage
		if r.ErrorMessage != nil && *r.ErrorMessage != "" {
			msg = *r.ErrorMessage
		}
		f.ErrorMessage = &msg
	}
	return regressed
}
