package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	err := n.Notify(context.Background(), Message{
		Template: VendorApproved,
		To:       []string{"pat@acme.test"},
		Subject:  "Your vendor account is active",
		Data:     map[string]string{"vendor": "Acme"},
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "notify", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, VendorApproved, fields["template"])
	assert.Equal(t, "Acme", fields["vendor"])
}

func TestMultiNotifier_CollectsErrors(t *testing.T) {
	ok := NewRecordingNotifier()
	bad1 := NewRecordingNotifier()
	bad1.FailWith(errors.New("smtp down"))
	bad2 := NewRecordingNotifier()
	bad2.FailWith(errors.New("queue full"))

	err := MultiNotifier{bad1, ok, bad2}.Notify(context.Background(), Message{Template: InvoiceApproved})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	// Every notifier still saw the message
	for _, n := range []*RecordingNotifier{ok, bad1, bad2} {
		assert.Len(t, n.ByTemplate(InvoiceApproved), 1)
	}
}
