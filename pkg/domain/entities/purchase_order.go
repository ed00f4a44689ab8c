package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	PODraft        POStatus = "draft"
	POApproved     POStatus = "approved"
	POSent         POStatus = "sent"
	POAcknowledged POStatus = "acknowledged"
	PODelivered    POStatus = "delivered"
	POCompleted    POStatus = "completed"
	POCancelled    POStatus = "cancelled"
)

var poTransitions = transitions[POStatus]{
	PODraft:        {POApproved, POCancelled},
	POApproved:     {POSent, POCancelled},
	POSent:         {POAcknowledged, PODelivered, POCancelled},
	POAcknowledged: {PODelivered, POCancelled},
	PODelivered:    {POCompleted},
}

// POItem is a single order line.
type POItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"item_name"`
	Description   string          `json:"description,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
}

// NewPOItem creates a validated line with its total computed.
func NewPOItem(name, description string, quantity int64, unitPrice decimal.Decimal, uom string) (*POItem, error) {
	if name == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice.StringFixed(2))
	}
	item := &POItem{
		ID:            NewID(),
		Name:          name,
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		UnitOfMeasure: uom,
	}
	item.LineTotal = item.computeLineTotal()
	return item, nil
}

func (i *POItem) computeLineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// PurchaseOrder is an order issued to a vendor.
type PurchaseOrder struct {
	ID                   string            `json:"id"`
	Number               string            `json:"po_number"`
	ContractID           string            `json:"contract_id,omitempty"`
	VendorID             string            `json:"vendor_id"`
	IssuedBy             string            `json:"issued_by"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	Status               POStatus          `json:"status"`
	IssuedDate           time.Time         `json:"issued_date"`
	ExpectedDeliveryDate *time.Time        `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time        `json:"actual_delivery_date,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	DeliveryAddress      map[string]string `json:"delivery_address,omitempty"`
	CancellationReason   string            `json:"cancellation_reason,omitempty"`
	Items                []POItem          `json:"items"`
	CreatedAt            time.Time         `json:"created_at"`
}

// CalculateTotal recomputes every line total and the order total.
func (po *PurchaseOrder) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range po.Items {
		po.Items[i].LineTotal = po.Items[i].computeLineTotal()
		total = total.Add(po.Items[i].LineTotal)
	}
	po.TotalAmount = total
	return total
}

// AddItem appends a line while the order is still a draft.
func (po *PurchaseOrder) AddItem(item POItem) error {
	if po.Status != PODraft {
		return &TransitionError{Entity: "purchase order items", From: string(po.Status), To: "modified"}
	}
	po.Items = append(po.Items, item)
	po.CalculateTotal()
	return nil
}

// RemoveItem drops a line while the order is still a draft and returns it.
func (po *PurchaseOrder) RemoveItem(itemID string) (POItem, error) {
	if po.Status != PODraft {
		return POItem{}, &TransitionError{Entity: "purchase order items", From: string(po.Status), To: "modified"}
	}
	for i, item := range po.Items {
		if item.ID == itemID {
			po.Items = append(po.Items[:i], po.Items[i+1:]...)
			po.CalculateTotal()
			return item, nil
		}
	}
	return POItem{}, NewNotFound("purchase order item", itemID)
}

// Approve moves a draft to approved.
func (po *PurchaseOrder) Approve() error {
	return move("purchase order", poTransitions, &po.Status, POApproved)
}

// MarkSent records dispatch to the vendor.
func (po *PurchaseOrder) MarkSent() error {
	return move("purchase order", poTransitions, &po.Status, POSent)
}

// Acknowledge records the vendor's confirmation.
func (po *PurchaseOrder) Acknowledge() error {
	return move("purchase order", poTransitions, &po.Status, POAcknowledged)
}

// MarkDelivered records receipt of goods on day.
func (po *PurchaseOrder) MarkDelivered(day time.Time) error {
	if err := move("purchase order", poTransitions, &po.Status, PODelivered); err != nil {
		return err
	}
	d := Day(day)
	po.ActualDeliveryDate = &d
	return nil
}

// Complete closes a delivered order.
func (po *PurchaseOrder) Complete() error {
	return move("purchase order", poTransitions, &po.Status, POCompleted)
}

// Cancel abandons the order before delivery.
func (po *PurchaseOrder) Cancel(reason string) error {
	if err := move("purchase order", poTransitions, &po.Status, POCancelled); err != nil {
		return err
	}
	po.CancellationReason = reason
	return nil
}
