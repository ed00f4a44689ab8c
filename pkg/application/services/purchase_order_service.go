package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
	domainsvc "github.com/vsinha/procure/pkg/domain/services"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
)

// PurchaseOrderService issues orders to vendors and tracks them to completion.
type PurchaseOrderService struct {
	workflow
}

// NewPurchaseOrderService creates the purchase order service.
func NewPurchaseOrderService(deps Deps) *PurchaseOrderService {
	return &PurchaseOrderService{workflow: newWorkflow(deps, "purchase_order")}
}

func buildItems(inputs []dto.POItemInput, verr *entities.ValidationError) []entities.POItem {
	items := make([]entities.POItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := entities.NewPOItem(in.Name, in.Description, in.Quantity, in.UnitPrice, in.UnitOfMeasure)
		if err != nil {
			verr.Add("items."+strconv.Itoa(i), err.Error())
			continue
		}
		items = append(items, *item)
	}
	return items
}

// CreatePO drafts a purchase order with at least one line.
func (s *PurchaseOrderService) CreatePO(ctx context.Context, actor *entities.User, input dto.CreatePOInput) (*entities.PurchaseOrder, error) {
	if err := authorize(actor, entities.PermManagePurchaseOrders); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	if input.VendorID == "" {
		verr.Add("vendor_id", "is required")
	}
	if len(input.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}
	items := buildItems(input.Items, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var po *entities.PurchaseOrder
	err := s.run(ctx, "po.create", actor, func(tx repositories.Store, fx *effects) error {
		if _, err := tx.Vendors().GetVendor(ctx, input.VendorID); err != nil {
			return err
		}
		if input.ContractID != "" {
			contract, err := tx.Contracts().GetContract(ctx, input.ContractID)
			if err != nil {
				return err
			}
			if contract.VendorID != input.VendorID {
				verr := entities.NewValidationError()
				verr.Add("contract_id", "belongs to another vendor")
				return verr
			}
		}

		now := s.now()
		number, err := nextNumber(ctx, tx, domainsvc.DocPurchaseOrder, now.Year())
		if err != nil {
			return err
		}
		issued := s.today()
		if input.IssuedDate != nil {
			issued = entities.Day(*input.IssuedDate)
		}
		var expected *time.Time
		if input.ExpectedDeliveryDate != nil {
			d := entities.Day(*input.ExpectedDeliveryDate)
			expected = &d
		}
		po = &entities.PurchaseOrder{
			ID:                   entities.NewID(),
			Number:               number,
			ContractID:           input.ContractID,
			VendorID:             input.VendorID,
			IssuedBy:             actor.ID,
			Status:               entities.PODraft,
			IssuedDate:           issued,
			ExpectedDeliveryDate: expected,
			Notes:                input.Notes,
			DeliveryAddress:      input.DeliveryAddress,
			Items:                items,
			CreatedAt:            now,
		}
		po.CalculateTotal()
		if err := tx.PurchaseOrders().SavePurchaseOrder(ctx, po); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		fx.record(events.POCreatedEvent, "purchase_order", po.ID, events.DocumentCreated{
			Number:   po.Number,
			VendorID: po.VendorID,
			Amount:   po.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order created",
		zap.String("po", po.Number),
		zap.Int("items", len(po.Items)),
		zap.String("total", po.TotalAmount.StringFixed(2)))
	return po, nil
}

// GetPO returns a purchase order the actor may see.
func (s *PurchaseOrderService) GetPO(ctx context.Context, actor *entities.User, poID string) (*entities.PurchaseOrder, error) {
	po, err := s.store.PurchaseOrders().GetPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.store.Vendors().GetVendor(ctx, po.VendorID)
	if err != nil {
		return nil, err
	}
	if err := authorizeVendorOrStaff(actor, vendor, entities.PermManagePurchaseOrders); err != nil {
		return nil, err
	}
	return po, nil
}

type poStep struct {
	event  string
	change func(po *entities.PurchaseOrder) error
}

// advance applies steps in order within one transaction. check runs against
// the loaded order before any change.
func (s *PurchaseOrderService) advance(
	ctx context.Context,
	op string,
	actor *entities.User,
	poID, reason string,
	check func(tx repositories.Store, po *entities.PurchaseOrder) error,
	steps ...poStep,
) (*entities.PurchaseOrder, error) {
	var po *entities.PurchaseOrder
	err := s.run(ctx, op, actor, func(tx repositories.Store, fx *effects) error {
		p, err := tx.PurchaseOrders().GetPurchaseOrder(ctx, poID)
		if err != nil {
			return err
		}
		if err := check(tx, p); err != nil {
			return err
		}
		for _, step := range steps {
			from := p.Status
			if err := step.change(p); err != nil {
				return err
			}
			fx.record(step.event, "purchase_order", p.ID, events.StatusChanged{From: string(from), To: string(p.Status), Reason: reason})
		}
		if err := tx.PurchaseOrders().SavePurchaseOrder(ctx, p); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		po = p
		if p.Status == entities.POSent {
			fx.notify(notifications.Message{
				Template: notifications.PurchaseOrderSent,
				To:       vendorEmail(ctx, tx, p.VendorID),
				Subject:  "Purchase order " + p.Number,
				Data: map[string]string{
					"po_number":    p.Number,
					"total_amount": p.TotalAmount.StringFixed(2),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order status changed", zap.String("po", po.Number), zap.String("status", string(po.Status)))
	return po, nil
}

func (s *PurchaseOrderService) staffOnly(actor *entities.User) func(repositories.Store, *entities.PurchaseOrder) error {
	return func(repositories.Store, *entities.PurchaseOrder) error {
		return authorize(actor, entities.PermManagePurchaseOrders)
	}
}

func (s *PurchaseOrderService) vendorOrStaff(ctx context.Context, actor *entities.User) func(repositories.Store, *entities.PurchaseOrder) error {
	return func(tx repositories.Store, po *entities.PurchaseOrder) error {
		vendor, err := tx.Vendors().GetVendor(ctx, po.VendorID)
		if err != nil {
			return err
		}
		return authorizeVendorOrStaff(actor, vendor, entities.PermManagePurchaseOrders)
	}
}

// ApprovePO approves a draft and sends it to the vendor.
func (s *PurchaseOrderService) ApprovePO(ctx context.Context, actor *entities.User, poID string) (*entities.PurchaseOrder, error) {
	return s.advance(ctx, "po.approve", actor, poID, "", s.staffOnly(actor),
		poStep{events.POApprovedEvent, (*entities.PurchaseOrder).Approve},
		poStep{events.POSentEvent, (*entities.PurchaseOrder).MarkSent},
	)
}

// AcknowledgePO records the vendor's confirmation of a sent order.
func (s *PurchaseOrderService) AcknowledgePO(ctx context.Context, actor *entities.User, poID string) (*entities.PurchaseOrder, error) {
	return s.advance(ctx, "po.acknowledge", actor, poID, "", s.vendorOrStaff(ctx, actor),
		poStep{events.POAcknowledgedEvent, (*entities.PurchaseOrder).Acknowledge},
	)
}

// MarkDelivered records receipt of the goods, today when date is nil.
func (s *PurchaseOrderService) MarkDelivered(ctx context.Context, actor *entities.User, poID string, date *time.Time) (*entities.PurchaseOrder, error) {
	day := s.today()
	if date != nil {
		day = entities.Day(*date)
	}
	return s.advance(ctx, "po.deliver", actor, poID, "", s.staffOnly(actor),
		poStep{events.PODeliveredEvent, func(po *entities.PurchaseOrder) error { return po.MarkDelivered(day) }},
	)
}

// CompletePO closes a delivered order.
func (s *PurchaseOrderService) CompletePO(ctx context.Context, actor *entities.User, poID string) (*entities.PurchaseOrder, error) {
	return s.advance(ctx, "po.complete", actor, poID, "", s.staffOnly(actor),
		poStep{events.POCompletedEvent, (*entities.PurchaseOrder).Complete},
	)
}

// CancelPO abandons an order that has not been delivered.
func (s *PurchaseOrderService) CancelPO(ctx context.Context, actor *entities.User, poID, reason string) (*entities.PurchaseOrder, error) {
	return s.advance(ctx, "po.cancel", actor, poID, reason, s.staffOnly(actor),
		poStep{events.POCancelledEvent, func(po *entities.PurchaseOrder) error { return po.Cancel(reason) }},
	)
}

// AddItem appends a line to a draft order.
func (s *PurchaseOrderService) AddItem(ctx context.Context, actor *entities.User, poID string, input dto.POItemInput) (*entities.PurchaseOrder, error) {
	if err := authorize(actor, entities.PermManagePurchaseOrders); err != nil {
		return nil, err
	}
	verr := entities.NewValidationError()
	items := buildItems([]dto.POItemInput{input}, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	item := items[0]

	var po *entities.PurchaseOrder
	err := s.run(ctx, "po.add_item", actor, func(tx repositories.Store, fx *effects) error {
		p, err := tx.PurchaseOrders().GetPurchaseOrder(ctx, poID)
		if err != nil {
			return err
		}
		if err := p.AddItem(item); err != nil {
			return err
		}
		if err := tx.PurchaseOrders().SavePurchaseOrder(ctx, p); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		po = p
		fx.record(events.POItemAddedEvent, "purchase_order", p.ID, events.POItemChanged{
			ItemID:      item.ID,
			Name:        item.Name,
			TotalAmount: p.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// RemoveItem drops a line from a draft order.
func (s *PurchaseOrderService) RemoveItem(ctx context.Context, actor *entities.User, poID, itemID string) (*entities.PurchaseOrder, error) {
	if err := authorize(actor, entities.PermManagePurchaseOrders); err != nil {
		return nil, err
	}
	var po *entities.PurchaseOrder
	err := s.run(ctx, "po.remove_item", actor, func(tx repositories.Store, fx *effects) error {
		p, err := tx.PurchaseOrders().GetPurchaseOrder(ctx, poID)
		if err != nil {
			return err
		}
		removed, err := p.RemoveItem(itemID)
		if err != nil {
			return err
		}
		if err := tx.PurchaseOrders().SavePurchaseOrder(ctx, p); err != nil {
			return fmt.Errorf("failed to save purchase order: %w", err)
		}
		po = p
		fx.record(events.POItemRemovedEvent, "purchase_order", p.ID, events.POItemChanged{
			ItemID:      removed.ID,
			Name:        removed.Name,
			TotalAmount: p.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}
