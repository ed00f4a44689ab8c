package notifications

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notification templates sent by the workflow services.
const (
	VendorRegistrationReceived = "vendor.registration_received"
	VendorRegistrationAdmin    = "vendor.registration_admin"
	VendorApproved             = "vendor.approved"
	VendorSuspended            = "vendor.suspended"
	RFQInvitation              = "rfq.invitation"
	RFQAwarded                 = "rfq.awarded"
	ContractRenewed            = "contract.renewed"
	PurchaseOrderSent          = "po.sent"
	InvoiceSubmitted           = "invoice.submitted"
	InvoiceApproved            = "invoice.approved"
	InvoiceRejected            = "invoice.rejected"
	PaymentProcessed           = "payment.processed"
)

// Message is one notification to one or more recipients.
type Message struct {
	Template string            `json:"template"`
	To       []string          `json:"to"`
	Subject  string            `json:"subject"`
	Data     map[string]string `json:"data,omitempty"`
}

// Notifier delivers messages. Delivery failures never roll back the
// operation that produced the message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the structured log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	fields := []zap.Field{
		zap.String("template", msg.Template),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	}
	for k, v := range msg.Data {
		fields = append(fields, zap.String(k, v))
	}
	n.logger.Info("notification", fields...)
	return nil
}

// RecordingNotifier keeps every message in memory.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// FailWith makes later Notify calls record the message and return err.
func (n *RecordingNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *RecordingNotifier) Notify(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

// Messages returns a copy of the recorded messages.
func (n *RecordingNotifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.messages)
}

// ByTemplate returns recorded messages of one template.
func (n *RecordingNotifier) ByTemplate(template string) []Message {
	var out []Message
	for _, m := range n.Messages() {
		if m.Template == template {
			out = append(out, m)
		}
	}
	return out
}

// MultiNotifier fans a message out to every notifier, collecting all errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg Message) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Notify(ctx, msg))
	}
	return err
}
