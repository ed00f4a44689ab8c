package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestContract_IsActive(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		status ContractStatus
		today  time.Time
		expect bool
	}{
		{"first day", ContractActive, start, true},
		{"last day late evening", ContractActive, end.Add(23 * time.Hour), true},
		{"day after end", ContractActive, end.AddDate(0, 0, 1), false},
		{"before start", ContractActive, start.AddDate(0, 0, -1), false},
		{"draft in range", ContractDraft, start.AddDate(0, 1, 0), false},
		{"renewed in range", ContractRenewed, start.AddDate(0, 1, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Contract{Status: tc.status, StartDate: start, EndDate: end}
			if got := c.IsActive(tc.today); got != tc.expect {
				t.Errorf("Expected %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestContract_IsExpiringSoon(t *testing.T) {
	today := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	c := &Contract{Status: ContractActive, EndDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}

	if !c.IsExpiringSoon(today, 30) {
		t.Error("Expected contract ending in 30 days to be expiring within 30")
	}
	if c.IsExpiringSoon(today, 29) {
		t.Error("Expected contract ending in 30 days not to be expiring within 29")
	}
}

func TestContract_RenewAndTerminate(t *testing.T) {
	c := &Contract{
		Status:  ContractActive,
		EndDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Value:   decimal.NewFromInt(1000),
	}
	newEnd := time.Date(2026, 12, 31, 10, 0, 0, 0, time.UTC)
	if err := c.Renew(newEnd, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if c.Status != ContractRenewed {
		t.Errorf("Expected renewed, got %s", c.Status)
	}
	if !c.EndDate.Equal(Day(newEnd)) {
		t.Errorf("Expected end date %v, got %v", Day(newEnd), c.EndDate)
	}
	if !c.Value.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected value 1200, got %s", c.Value)
	}
	if err := c.Renew(newEnd.AddDate(1, 0, 0), c.Value); err != nil {
		t.Fatalf("Renewing a renewed contract failed: %v", err)
	}
	if err := c.Activate(); err != nil {
		t.Fatalf("Re-activation failed: %v", err)
	}
	if err := c.Terminate("breach"); err != nil {
		t.Fatalf("Terminate failed: %v", err)
	}
	if c.TerminationReason != "breach" {
		t.Errorf("Expected reason breach, got %q", c.TerminationReason)
	}
	if err := c.Activate(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected terminated contract to stay terminated, got %v", err)
	}
}

func TestContract_DraftCannotExpire(t *testing.T) {
	c := &Contract{Status: ContractDraft}
	if err := c.Expire(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}
