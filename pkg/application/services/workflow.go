package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	"github.com/vsinha/procure/pkg/infrastructure/tracing"
)

// Options holds the procurement settings the workflow services read.
type Options struct {
	ContractExpiryDays  int
	InvoiceDueSoonDays  int
	DefaultCurrency     string
	AutoSchedulePayment bool
	FinanceEmails       []string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ContractExpiryDays: 30,
		InvoiceDueSoonDays: 7,
		DefaultCurrency:    "USD",
	}
}

// Deps wires a workflow service to its collaborators. Only Store is required.
type Deps struct {
	Store    repositories.Store
	Events   events.EventStore
	Notifier notifications.Notifier
	Logger   *zap.Logger
	Clock    func() time.Time
	Options  Options
}

// System is the actor used by scheduled jobs and the CLI.
var System = &entities.User{
	ID:    "system",
	Name:  "System",
	Roles: []entities.Role{entities.RoleSuperAdmin},
}

// workflow is embedded by every service. It runs an operation in one
// transaction and dispatches the side effects the operation queued once the
// transaction has committed.
type workflow struct {
	store    repositories.Store
	events   events.EventStore
	notifier notifications.Notifier
	logger   *zap.Logger
	clock    func() time.Time
	opts     Options
}

func newWorkflow(deps Deps, name string) workflow {
	w := workflow{
		store:    deps.Store,
		events:   deps.Events,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		clock:    deps.Clock,
		opts:     deps.Options,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	w.logger = w.logger.Named(name)
	if w.clock == nil {
		w.clock = time.Now
	}
	if w.opts.ContractExpiryDays <= 0 {
		w.opts.ContractExpiryDays = DefaultOptions().ContractExpiryDays
	}
	if w.opts.InvoiceDueSoonDays <= 0 {
		w.opts.InvoiceDueSoonDays = DefaultOptions().InvoiceDueSoonDays
	}
	if w.opts.DefaultCurrency == "" {
		w.opts.DefaultCurrency = DefaultOptions().DefaultCurrency
	}
	return w
}

func (w *workflow) now() time.Time {
	return w.clock().UTC()
}

func (w *workflow) today() time.Time {
	return entities.Day(w.now())
}

// effects collects what an operation wants to announce after commit.
type effects struct {
	actor    string
	events   []events.Event
	messages []notifications.Message
}

func (e *effects) record(eventType, entity, id string, data interface{}) {
	e.events = append(e.events, events.NewEvent(eventType, events.Stream(entity, id), e.actor, data))
}

func (e *effects) notify(msg notifications.Message) {
	if len(msg.To) == 0 {
		return
	}
	e.messages = append(e.messages, msg)
}

// run executes fn inside a store transaction traced as op. Queued events and
// notifications are only dispatched when the transaction commits.
func (w *workflow) run(ctx context.Context, op string, actor *entities.User, fn func(tx repositories.Store, fx *effects) error) error {
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	ctx, span := tracing.StartSpan(ctx, op, attribute.String("actor", actorID))

	var fx *effects
	err := w.store.Transact(ctx, func(tx repositories.Store) error {
		fx = &effects{actor: actorID}
		return fn(tx, fx)
	})
	tracing.EndSpan(span, err)
	if err != nil {
		return err
	}
	w.dispatch(ctx, fx)
	return nil
}

// read runs a read-only query traced as op.
func (w *workflow) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, op)
	err := fn(ctx)
	tracing.EndSpan(span, err)
	return err
}

func (w *workflow) dispatch(ctx context.Context, fx *effects) {
	if fx == nil {
		return
	}
	if w.events != nil {
		for _, ev := range fx.events {
			if err := w.events.AppendEvent(ctx, ev.StreamID(), ev); err != nil {
				w.logger.Warn("failed to record activity",
					zap.String("event", ev.Type()),
					zap.String("stream", ev.StreamID()),
					zap.Error(err))
			}
		}
	}
	if w.notifier != nil {
		for _, msg := range fx.messages {
			if err := w.notifier.Notify(ctx, msg); err != nil {
				w.logger.Warn("failed to send notification",
					zap.String("template", msg.Template),
					zap.Strings("to", msg.To),
					zap.Error(err))
			}
		}
	}
}

// authorize returns a PermissionError unless actor holds permission.
func authorize(actor *entities.User, permission entities.Permission) error {
	if err := domainsvc.Authorize(actor, permission); err != nil {
		return &PermissionError{Permission: permission}
	}
	return nil
}

// PermissionError reports the permission an actor lacked.
type PermissionError struct {
	Permission entities.Permission
}

func (e *PermissionError) Error() string {
	return "missing permission " + string(e.Permission)
}

func (e *PermissionError) Unwrap() error {
	return entities.ErrForbidden
}

// ownsVendor reports whether actor is the login linked to vendor.
func ownsVendor(actor *entities.User, vendor *entities.Vendor) bool {
	return actor != nil && vendor != nil && vendor.UserID != "" && vendor.UserID == actor.ID
}

// authorizeVendorOrStaff allows the vendor's own user or anyone holding permission.
func authorizeVendorOrStaff(actor *entities.User, vendor *entities.Vendor, permission entities.Permission) error {
	if ownsVendor(actor, vendor) {
		return nil
	}
	return authorize(actor, permission)
}

// vendorEmail returns the contact address of vendorID, or nil when unknown.
func vendorEmail(ctx context.Context, tx repositories.Store, vendorID string) []string {
	v, err := tx.Vendors().GetVendor(ctx, vendorID)
	if err != nil || v.ContactEmail == "" {
		return nil
	}
	return []string{v.ContactEmail}
}

func emailsOf(users []*entities.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Email)
	}
	return out
}
