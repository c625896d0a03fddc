package consumer

import (
	"errors"
	"testing"

	"fabrication-service/internal/producer"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockEmailSender struct {
	SendFunc func(msg producer.EmailMessage) error
}

func (m *mockEmailSender) Send(msg producer.EmailMessage) error {
	return m.SendFunc(msg)
}

func newObservedEmail(s EmailSender) (*KafkaEmailConsumer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &KafkaEmailConsumer{sender: s, log: zap.New(core)}, logs
}

func TestEmailHandleMessage_Sends(t *testing.T) {
	var got producer.EmailMessage
	c, logs := newObservedEmail(&mockEmailSender{SendFunc: func(msg producer.EmailMessage) error {
		got = msg
		return nil
	}})

	c.handleMessage(kafka.Message{Value: []byte(`{"to":"design@example.com","subject":"s","template":"design_review","data":{"order_name":"#D1"}}`)})

	if got.To != "design@example.com" || got.Template != "design_review" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.Data["order_name"] != "#D1" {
		t.Fatalf("data not decoded: %+v", got.Data)
	}
	if logs.FilterMessage("email sent").Len() != 1 {
		t.Fatalf("expected sent log")
	}
}

func TestEmailHandleMessage_SkipsInvalid(t *testing.T) {
	called := false
	c, logs := newObservedEmail(&mockEmailSender{SendFunc: func(producer.EmailMessage) error {
		called = true
		return nil
	}})

	c.handleMessage(kafka.Message{Value: []byte(`not json`)})
	c.handleMessage(kafka.Message{Value: []byte(`{"to":"","template":"design_review"}`)})

	if called {
		t.Fatalf("sender must not be called for invalid messages")
	}
	if logs.FilterMessage("unmarshal email message").Len() != 1 || logs.FilterMessage("invalid email message").Len() != 1 {
		t.Fatalf("unexpected logs: %v", logs.All())
	}
}

func TestEmailHandleMessage_SendFailureLogged(t *testing.T) {
	c, logs := newObservedEmail(&mockEmailSender{SendFunc: func(producer.EmailMessage) error {
		return errors.New("smtp down")
	}})

	c.handleMessage(kafka.Message{Value: []byte(`{"to":"a@b.co","template":"design_review"}`)})

	if logs.FilterMessage("send email failed").Len() != 1 {
		t.Fatalf("expected failure log")
	}
}
