package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/application/services"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	"github.com/vsinha/procure/pkg/infrastructure/repositories/csv"
)

func newDemoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a vendor through onboarding to a paid invoice against an in-memory store",
		RunE: func(cmd *cobra.Command, args []string) error {
			demo := *a
			demo.cfg.Storage.Driver = "memory"
			return demo.runDemo(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// demoSummary is what a demo run produced.
type demoSummary struct {
	VendorID      string
	ContractNo    string
	PONumber      string
	InvoiceStatus entities.InvoiceStatus
	Payments      []string
	Notifications int
	Events        int
}

func (a *app) runDemo(ctx context.Context, w io.Writer) error {
	summary, err := a.demo(ctx, w)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n📊 Demo Summary\n")
	fmt.Fprintf(w, "===============\n")
	fmt.Fprintf(w, "Vendor:        %s\n", summary.VendorID)
	fmt.Fprintf(w, "Contract:      %s\n", summary.ContractNo)
	fmt.Fprintf(w, "Purchase order: %s\n", summary.PONumber)
	fmt.Fprintf(w, "Invoice:       %s\n", summary.InvoiceStatus)
	fmt.Fprintf(w, "Payments:      %v\n", summary.Payments)
	fmt.Fprintf(w, "Notifications: %d\n", summary.Notifications)
	fmt.Fprintf(w, "Events:        %d\n", summary.Events)
	return nil
}

func (a *app) demo(ctx context.Context, w io.Writer) (*demoSummary, error) {
	notifier := notifications.NewRecordingNotifier()
	rt, err := a.open(ctx, notifications.MultiNotifier{notifier, notifications.NewLogNotifier(a.logger)})
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	step := func(format string, args ...interface{}) {
		if a.flags.Verbose {
			fmt.Fprintf(w, "✅ "+format+"\n", args...)
		}
	}
	svc := rt.services
	staff := services.System
	now := a.clock()

	err = csv.Seed(ctx, rt.store, &csv.SeedData{
		Categories: []*entities.VendorCategory{{
			ID:     "cat-furniture",
			Name:   "Office Furniture",
			Slug:   "office-furniture",
			Status: entities.CategoryActive,
		}},
	}, now)
	if err != nil {
		return nil, err
	}

	vendor, err := svc.Onboarding.RegisterVendor(ctx, dto.VendorRegistration{
		CompanyName:   "Northwind Seating",
		CategoryID:    "cat-furniture",
		ContactName:   "Dana Reyes",
		ContactEmail:  "dana@northwind.example",
		TermsAccepted: true,
	})
	if err != nil {
		return nil, fmt.Errorf("register vendor: %w", err)
	}
	step("Registered %s (%s)", vendor.CompanyName, vendor.Status)

	approval, err := svc.Onboarding.ApproveVendor(ctx, staff, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("approve vendor: %w", err)
	}
	vendorUser := approval.User
	step("Approved vendor, login %s", vendorUser.Email)

	rfq, err := svc.RFQs.CreateRFQ(ctx, staff, dto.CreateRFQInput{
		Title:   "Ergonomic chairs",
		Budget:  decimal.NewFromInt(20000),
		Weights: map[string]float64{"price": 0.6, "quality": 0.4},
	})
	if err != nil {
		return nil, fmt.Errorf("create rfq: %w", err)
	}
	if _, err := svc.RFQs.InviteVendors(ctx, staff, rfq.ID, []string{vendor.ID}); err != nil {
		return nil, fmt.Errorf("invite vendors: %w", err)
	}
	if _, err := svc.RFQs.PublishRFQ(ctx, staff, rfq.ID); err != nil {
		return nil, fmt.Errorf("publish rfq: %w", err)
	}
	step("Published RFQ %s", rfq.Slug)

	days := 14
	response, err := svc.RFQs.SubmitResponse(ctx, vendorUser, rfq.ID, dto.SubmitResponseInput{
		VendorID:         vendor.ID,
		QuotedAmount:     decimal.NewFromInt(18500),
		DeliveryTimeDays: &days,
	})
	if err != nil {
		return nil, fmt.Errorf("submit response: %w", err)
	}
	if _, err := svc.RFQs.EvaluateResponse(ctx, staff, response.ID, dto.EvaluationInput{
		CriteriaScores: map[string]float64{"price": 82, "quality": 90},
	}); err != nil {
		return nil, fmt.Errorf("evaluate response: %w", err)
	}
	if _, err := svc.RFQs.AwardContract(ctx, staff, rfq.ID, response.ID); err != nil {
		return nil, fmt.Errorf("award rfq: %w", err)
	}
	step("Awarded RFQ to %s at %s", vendor.CompanyName, response.QuotedAmount)

	contract, err := svc.Contracts.CreateFromRFQ(ctx, staff, dto.CreateContractInput{
		RFQID:             rfq.ID,
		WinningResponseID: response.ID,
		StartDate:         now,
		EndDate:           now.AddDate(1, 0, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	if contract, err = svc.Contracts.ActivateContract(ctx, staff, contract.ID); err != nil {
		return nil, fmt.Errorf("activate contract: %w", err)
	}
	step("Contract %s is %s", contract.Number, contract.Status)

	po, err := svc.Orders.CreatePO(ctx, staff, dto.CreatePOInput{
		VendorID:   vendor.ID,
		ContractID: contract.ID,
		Items: []dto.POItemInput{
			{Name: "Task chair", Quantity: 100, UnitPrice: decimal.RequireFromString("185.00")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	if _, err := svc.Orders.ApprovePO(ctx, staff, po.ID); err != nil {
		return nil, fmt.Errorf("approve purchase order: %w", err)
	}
	if _, err := svc.Orders.AcknowledgePO(ctx, vendorUser, po.ID); err != nil {
		return nil, fmt.Errorf("acknowledge purchase order: %w", err)
	}
	if _, err := svc.Orders.MarkDelivered(ctx, staff, po.ID, nil); err != nil {
		return nil, fmt.Errorf("deliver purchase order: %w", err)
	}
	if po, err = svc.Orders.CompletePO(ctx, staff, po.ID); err != nil {
		return nil, fmt.Errorf("complete purchase order: %w", err)
	}
	step("Purchase order %s %s for %s", po.Number, po.Status, po.TotalAmount)

	invoice, err := svc.Invoices.SubmitInvoice(ctx, vendorUser, dto.SubmitInvoiceInput{
		VendorID:        vendor.ID,
		Number:          "NW-1001",
		PurchaseOrderID: po.ID,
		Amount:          po.TotalAmount,
		InvoiceDate:     now,
		DueDate:         now.AddDate(0, 0, 30),
	})
	if err != nil {
		return nil, fmt.Errorf("submit invoice: %w", err)
	}
	if _, err := svc.Invoices.ApproveInvoice(ctx, staff, invoice.ID); err != nil {
		return nil, fmt.Errorf("approve invoice: %w", err)
	}

	summary := &demoSummary{VendorID: vendor.ID, ContractNo: contract.Number, PONumber: po.Number}
	half := po.TotalAmount.Div(decimal.NewFromInt(2)).Round(2)
	for _, amount := range []decimal.Decimal{half, po.TotalAmount.Sub(half)} {
		result, err := svc.Invoices.ProcessPayment(ctx, staff, invoice.ID, dto.PaymentInput{Amount: amount})
		if err != nil {
			return nil, fmt.Errorf("process payment: %w", err)
		}
		summary.Payments = append(summary.Payments, result.Payment.Reference)
		summary.InvoiceStatus = result.Invoice.Status
		step("Paid %s, %s remaining", amount, result.Balance.Remaining)
	}

	if _, _, err := svc.Rating.AddReview(ctx, staff, vendor.ID, dto.ReviewInput{
		Quality: 5, Timeliness: 4, Communication: 5,
	}); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	all, err := rt.events.ReadAllEvents(ctx, 0)
	if err != nil {
		return nil, err
	}
	summary.Events = len(all)
	summary.Notifications = len(notifier.Messages())
	return summary, nil
}
