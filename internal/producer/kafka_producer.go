package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
}

func write(ctx context.Context, w *kafka.Writer, key string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// ProcessingJob asks the geometry worker to measure an uploaded file.
type ProcessingJob struct {
	FileID     uuid.UUID `json:"fileId"`
	SessionID  string    `json:"sessionId"`
	FileName   string    `json:"fileName"`
	StorageURL string    `json:"url"`
}

type JobProducer struct {
	writer *kafka.Writer
}

func NewJobProducer(brokers []string, topic string) *JobProducer {
	return &JobProducer{writer: newWriter(brokers, topic)}
}

// PublishProcessingJob is keyed by file id so reports for one file stay on
// one partition.
func (p *JobProducer) PublishProcessingJob(ctx context.Context, job ProcessingJob) error {
	return write(ctx, p.writer, job.FileID.String(), job)
}

func (p *JobProducer) Close() error {
	return p.writer.Close()
}

type EmailProducer struct {
	writer *kafka.Writer
}

func NewEmailProducer(brokers []string, topic string) *EmailProducer {
	return &EmailProducer{writer: newWriter(brokers, topic)}
}

type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func (p *EmailProducer) SendEmail(ctx context.Context, key string, msg EmailMessage) error {
	return write(ctx, p.writer, key, msg)
}

func (p *EmailProducer) Close() error {
	return p.writer.Close()
}
