package lead

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vield/calculadora/internal/logger"
	calcnats "github.com/vield/calculadora/internal/nats"
)

// Intake receives submitted leads. A returned error means the lead was not
// accepted and the caller still owns it.
type Intake interface {
	Submit(ctx context.Context, l Lead) error
}

// IntakeFunc adapts a function to Intake.
type IntakeFunc func(ctx context.Context, l Lead) error

func (f IntakeFunc) Submit(ctx context.Context, l Lead) error { return f(ctx, l) }

// LogIntake only logs the lead. It is the default while no downstream
// system is wired.
type LogIntake struct{}

func (LogIntake) Submit(_ context.Context, l Lead) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling lead: %w", err)
	}
	logger.Info("Lead ready to send: %s", data)
	return nil
}

// NATSIntake publishes leads to the JetStream lead stream, one subject per
// renovation type. The lead id is the message id, so a retried submit of
// the same lead is deduplicated by the stream.
type NATSIntake struct {
	js jetstream.JetStream
}

// NewNATSIntake creates the lead stream if needed and returns the intake.
func NewNATSIntake(ctx context.Context, js jetstream.JetStream) (*NATSIntake, error) {
	if _, err := calcnats.SetupLeadStream(ctx, js); err != nil {
		return nil, fmt.Errorf("setting up lead stream: %w", err)
	}
	return &NATSIntake{js: js}, nil
}

func (n *NATSIntake) Submit(ctx context.Context, l Lead) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling lead: %w", err)
	}

	subject := calcnats.SubjectForLead(l.SubjectToken())
	ack, err := n.js.Publish(ctx, subject, data, jetstream.WithMsgID(l.ID))
	if err != nil {
		logger.Error("Failed to publish lead to %s: %v", subject, err)
		return fmt.Errorf("publishing lead: %w", err)
	}

	logger.Debug("Lead %s published: seq=%d duplicate=%t", l.ID, ack.Sequence, ack.Duplicate)
	return nil
}
