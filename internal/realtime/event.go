package realtime

import (
	"encoding/json"
	"fmt"

	"fabrication-service/internal/filestatus"
	"fabrication-service/internal/models"
)

// EventType tags status updates on the push channel.
const EventType = "file.statusUpdate"

// Event is a status report addressed to one session. The session lives only
// in the payload; the channel itself is shared.
type Event struct {
	SessionID string
	Report    filestatus.Report
}

type wireEvent struct {
	Type         string             `json:"type"`
	SessionID    string             `json:"sessionId"`
	FileID       string             `json:"fileId"`
	Status       models.FileStatus  `json:"status"`
	MassGrams    *float64           `json:"massGrams,omitempty"`
	Dimensions   *models.Dimensions `json:"dimensions,omitempty"`
	ErrorMessage *string            `json:"errorMessage,omitempty"`
}

// ParseEvent validates a push payload. Any failure wraps
// filestatus.ErrMalformedEvent.
func ParseEvent(data []byte) (Event, error) {
	var head struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Event{}, fmt.Errorf("%w: %v", filestatus.ErrMalformedEvent, err)
	}
	if head.SessionID == "" {
		return Event{}, fmt.Errorf("%w: missing sessionId", filestatus.ErrMalformedEvent)
	}
	r, err := filestatus.ParseReport(data)
	if err != nil {
		return Event{}, err
	}
	return Event{SessionID: head.SessionID, Report: r}, nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		Type:         EventType,
		SessionID:    e.SessionID,
		FileID:       e.Report.FileID.String(),
		Status:       e.Report.Status,
		MassGrams:    e.Report.MassGrams,
		Dimensions:   e.Report.Dimensions,
		ErrorMessage: e.Report.ErrorMessage,
	})
}
