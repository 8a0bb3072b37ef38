package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the sink the pipelines report user-visible outcomes to.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// LogNotifier reports outcomes through the service logger.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, message string, severity Severity) {
	switch severity {
	case SeverityError:
		n.log.Errorw(message, "severity", severity)
	default:
		n.log.Infow(message, "severity", severity)
	}
}

type envelope struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// KafkaNotifier publishes outcome envelopes for downstream consumers
// (e.g. a notification service pushing to clients).
type KafkaNotifier struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewKafkaNotifier(brokers []string, topic string, log *zap.SugaredLogger) *KafkaNotifier {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaNotifier{writer: w, log: log}
}

func (n *KafkaNotifier) Notify(ctx context.Context, message string, severity Severity) {
	value, err := json.Marshal(envelope{Message: message, Severity: severity, At: time.Now().UTC()})
	if err != nil {
		n.log.Errorf("marshal notification: %v", err)
		return
	}
	msg := kafka.Message{Key: []byte(string(severity)), Value: value, Time: time.Now()}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		// Notification delivery is best effort; the pipeline outcome stands.
		n.log.Errorf("publish notification: %v", err)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string, severity Severity) {
	for _, n := range m {
		n.Notify(ctx, message, severity)
	}
}
