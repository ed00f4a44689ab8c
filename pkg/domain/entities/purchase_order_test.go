package entities

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewPOItem_Validation(t *testing.T) {
	item, err := NewPOItem("Laptop", "", 3, decimal.RequireFromString("999.99"), "each")
	if err != nil {
		t.Fatalf("Expected valid item creation to succeed: %v", err)
	}
	if !item.LineTotal.Equal(decimal.RequireFromString("2999.97")) {
		t.Errorf("Expected line total 2999.97, got %s", item.LineTotal)
	}

	testCases := []struct {
		name        string
		itemName    string
		quantity    int64
		price       string
		expectError string
	}{
		{"empty name", "", 1, "1", "item name cannot be empty"},
		{"zero quantity", "Pen", 0, "1", "quantity must be positive, got 0"},
		{"negative price", "Pen", 1, "-0.5", "unit price cannot be negative, got -0.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPOItem(tc.itemName, "", tc.quantity, decimal.RequireFromString(tc.price), "")
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expectError)
			}
			if !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestPurchaseOrder_ItemsRecalculateTotal(t *testing.T) {
	po := &PurchaseOrder{Status: PODraft}
	a := mustItem(t, "Desk", 2, "150.00")
	b := mustItem(t, "Chair", 4, "75.25")

	if err := po.AddItem(*a); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := po.AddItem(*b); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if !po.TotalAmount.Equal(decimal.RequireFromString("601")) {
		t.Fatalf("Expected total 601, got %s", po.TotalAmount)
	}

	removed, err := po.RemoveItem(a.ID)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if removed.Name != "Desk" {
		t.Errorf("Expected Desk removed, got %s", removed.Name)
	}
	if !po.TotalAmount.Equal(decimal.RequireFromString("301")) {
		t.Errorf("Expected total 301, got %s", po.TotalAmount)
	}
	if _, err := po.RemoveItem("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := po.Approve(); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := po.AddItem(*a); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected AddItem after approval to fail, got %v", err)
	}
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	delivered := time.Date(2025, 5, 20, 16, 30, 0, 0, time.UTC)
	po := &PurchaseOrder{Status: PODraft}

	steps := []struct {
		name  string
		apply func() error
		want  POStatus
	}{
		{"approve", po.Approve, POApproved},
		{"send", po.MarkSent, POSent},
		{"acknowledge", po.Acknowledge, POAcknowledged},
		{"deliver", func() error { return po.MarkDelivered(delivered) }, PODelivered},
		{"complete", po.Complete, POCompleted},
	}
	for _, step := range steps {
		if err := step.apply(); err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if po.Status != step.want {
			t.Fatalf("After %s expected %s, got %s", step.name, step.want, po.Status)
		}
	}
	if !po.ActualDeliveryDate.Equal(Day(delivered)) {
		t.Errorf("Expected delivery date %v, got %v", Day(delivered), po.ActualDeliveryDate)
	}
	if err := po.Cancel("late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected completed order cancel to fail, got %v", err)
	}
}

func TestPurchaseOrder_CancelBeforeDelivery(t *testing.T) {
	for _, status := range []POStatus{PODraft, POApproved, POSent, POAcknowledged} {
		po := &PurchaseOrder{Status: status}
		if err := po.Cancel("budget cut"); err != nil {
			t.Errorf("Cancel from %s failed: %v", status, err)
		}
		if po.CancellationReason != "budget cut" {
			t.Errorf("Expected reason recorded for %s", status)
		}
	}
	po := &PurchaseOrder{Status: PODelivered}
	if err := po.Cancel("x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected delivered cancel to fail, got %v", err)
	}
}

func mustItem(t *testing.T, name string, qty int64, price string) *POItem {
	t.Helper()
	item, err := NewPOItem(name, "", qty, decimal.RequireFromString(price), "each")
	if err != nil {
		t.Fatalf("NewPOItem(%s) failed: %v", name, err)
	}
	return item
}
