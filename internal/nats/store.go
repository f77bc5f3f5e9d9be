// Package nats runs the embedded JetStream broker the calculator uses for
// slot persistence and lead delivery.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// LeadStream captures every submitted lead.
	LeadStream = "calculadora_leads"

	// StateBucket is the KV bucket holding the wizard slots.
	StateBucket = "calculadora_state"

	leadSubjectPrefix = "calculadora.leads"
)

// SubjectForLeads returns the wildcard subject matching every lead.
func SubjectForLeads() string {
	return leadSubjectPrefix + ".>"
}

// SubjectForLead returns the subject for leads of one renovation type. The
// token must already be subject-safe (see lead.SubjectToken).
func SubjectForLead(token string) string {
	return fmt.Sprintf("%s.%s", leadSubjectPrefix, token)
}

// SetupLeadStream creates or updates the lead stream with 90-day retention.
func SetupLeadStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     LeadStream,
		Subjects: []string{SubjectForLeads()},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}

// OpenStateBucket creates or updates the KV bucket for wizard slots. Only
// the latest value per key is kept.
func OpenStateBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:  StateBucket,
		History: 1,
		Storage: jetstream.FileStorage,
	})
}
