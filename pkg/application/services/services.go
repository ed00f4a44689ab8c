package services

// Services bundles the workflow services sharing one set of dependencies.
type Services struct {
	Onboarding *VendorOnboardingService
	Rating     *VendorRatingService
	RFQs       *RFQService
	Contracts  *ContractService
	Orders     *PurchaseOrderService
	Invoices   *InvoiceService
}

// New builds every workflow service over the same dependencies.
func New(deps Deps) *Services {
	return &Services{
		Onboarding: NewVendorOnboardingService(deps),
		Rating:     NewVendorRatingService(deps),
		RFQs:       NewRFQService(deps),
		Contracts:  NewContractService(deps),
		Orders:     NewPurchaseOrderService(deps),
		Invoices:   NewInvoiceService(deps),
	}
}
