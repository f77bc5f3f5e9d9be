package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "calculadora.leads.>", SubjectForLeads())
	assert.Equal(t, "calculadora.leads.reforma-bano", SubjectForLead("reforma-bano"))
}

func TestBroker_StreamAndBucket(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := Start(dir)
	require.NoError(t, err)

	stream, err := SetupLeadStream(ctx, b.JS)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, LeadStream, info.Config.Name)
	assert.Equal(t, []string{"calculadora.leads.>"}, info.Config.Subjects)

	_, err = SetupLeadStream(ctx, b.JS)
	require.NoError(t, err, "setup is idempotent")

	kv, err := OpenStateBucket(ctx, b.JS)
	require.NoError(t, err)
	_, err = kv.Put(ctx, "vield_calculator_step", []byte("2"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	// File storage survives a restart in the same directory.
	b, err = Start(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	kv, err = OpenStateBucket(ctx, b.JS)
	require.NoError(t, err)
	entry, err := kv.Get(ctx, "vield_calculator_step")
	require.NoError(t, err)
	assert.Equal(t, "2", string(entry.Value()))
}

func TestShutdown_NilSafe(t *testing.T) {
	require.NoError(t, Shutdown(nil, nil))
}
