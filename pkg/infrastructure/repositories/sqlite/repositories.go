package sqlite

import (
	"context"
	"strings"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type userRepository struct{ q querier }

var _ repositories.UserRepository = userRepository{}

func (r userRepository) GetUser(ctx context.Context, id string) (*entities.User, error) {
	return users.get(ctx, r.q, id)
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return users.one(ctx, r.q, email, "email = ?", strings.ToLower(email))
}

func (r userRepository) ListUsersByRole(ctx context.Context, role entities.Role) ([]*entities.User, error) {
	f := filter{}.where("EXISTS (SELECT 1 FROM json_each(users.data, '$.roles') WHERE json_each.value = ?)", string(role))
	return users.list(ctx, r.q, f)
}

func (r userRepository) SaveUser(ctx context.Context, user *entities.User) error {
	return users.upsert(ctx, r.q, user)
}

type categoryRepository struct{ q querier }

var _ repositories.CategoryRepository = categoryRepository{}

func (r categoryRepository) GetCategory(ctx context.Context, id string) (*entities.VendorCategory, error) {
	return categories.get(ctx, r.q, id)
}

func (r categoryRepository) ListCategories(ctx context.Context) ([]*entities.VendorCategory, error) {
	return categories.list(ctx, r.q, filter{})
}

func (r categoryRepository) SaveCategory(ctx context.Context, category *entities.VendorCategory) error {
	return categories.upsert(ctx, r.q, category)
}

type vendorRepository struct{ q querier }

var _ repositories.VendorRepository = vendorRepository{}

func (r vendorRepository) GetVendor(ctx context.Context, id string) (*entities.Vendor, error) {
	return vendors.get(ctx, r.q, id)
}

func (r vendorRepository) GetVendorBySlug(ctx context.Context, slug string) (*entities.Vendor, error) {
	return vendors.one(ctx, r.q, slug, "slug = ?", slug)
}

func (r vendorRepository) GetVendorByCompanyName(ctx context.Context, name string) (*entities.Vendor, error) {
	return vendors.one(ctx, r.q, name, "company_name = ?", strings.ToLower(name))
}

func (r vendorRepository) GetVendorByContactEmail(ctx context.Context, email string) (*entities.Vendor, error) {
	return vendors.one(ctx, r.q, email, "contact_email = ?", strings.ToLower(email))
}

func (r vendorRepository) GetVendorByTaxID(ctx context.Context, taxID string) (*entities.Vendor, error) {
	return vendors.one(ctx, r.q, taxID, "tax_id = ?", taxID)
}

func (r vendorRepository) ListVendors(ctx context.Context, f repositories.VendorFilter) ([]*entities.Vendor, error) {
	return vendors.list(ctx, r.q, filter{}.eq("status", string(f.Status)).eq("category_id", f.CategoryID))
}

func (r vendorRepository) SaveVendor(ctx context.Context, vendor *entities.Vendor) error {
	return vendors.upsert(ctx, r.q, vendor)
}

type reviewRepository struct{ q querier }

var _ repositories.ReviewRepository = reviewRepository{}

func (r reviewRepository) SaveReview(ctx context.Context, review *entities.VendorReview) error {
	return reviews.upsert(ctx, r.q, review)
}

func (r reviewRepository) ListReviewsByVendor(ctx context.Context, vendorID string) ([]*entities.VendorReview, error) {
	return reviews.list(ctx, r.q, filter{}.where("vendor_id = ?", vendorID))
}

type warningRepository struct{ q querier }

var _ repositories.WarningRepository = warningRepository{}

func (r warningRepository) GetWarning(ctx context.Context, id string) (*entities.VendorWarning, error) {
	return warnings.get(ctx, r.q, id)
}

func (r warningRepository) SaveWarning(ctx context.Context, warning *entities.VendorWarning) error {
	return warnings.upsert(ctx, r.q, warning)
}

func (r warningRepository) ListWarningsByVendor(ctx context.Context, vendorID string) ([]*entities.VendorWarning, error) {
	return warnings.list(ctx, r.q, filter{}.where("vendor_id = ?", vendorID))
}

type rfqRepository struct{ q querier }

var _ repositories.RFQRepository = rfqRepository{}

func (r rfqRepository) GetRFQ(ctx context.Context, id string) (*entities.RFQ, error) {
	return rfqs.get(ctx, r.q, id)
}

func (r rfqRepository) ListRFQs(ctx context.Context, status entities.RFQStatus) ([]*entities.RFQ, error) {
	return rfqs.list(ctx, r.q, filter{}.eq("status", string(status)))
}

func (r rfqRepository) SaveRFQ(ctx context.Context, rfq *entities.RFQ) error {
	return rfqs.upsert(ctx, r.q, rfq)
}

type responseRepository struct{ q querier }

var _ repositories.ResponseRepository = responseRepository{}

func (r responseRepository) GetResponse(ctx context.Context, id string) (*entities.RFQResponse, error) {
	return responses.get(ctx, r.q, id)
}

func (r responseRepository) GetResponseByVendor(ctx context.Context, rfqID, vendorID string) (*entities.RFQResponse, error) {
	return responses.one(ctx, r.q, rfqID+"/"+vendorID, "rfq_id = ? AND vendor_id = ?", rfqID, vendorID)
}

func (r responseRepository) ListResponsesByRFQ(ctx context.Context, rfqID string) ([]*entities.RFQResponse, error) {
	return responses.list(ctx, r.q, filter{}.where("rfq_id = ?", rfqID))
}

func (r responseRepository) SaveResponse(ctx context.Context, response *entities.RFQResponse) error {
	return responses.upsert(ctx, r.q, response)
}

type evaluationRepository struct{ q querier }

var _ repositories.EvaluationRepository = evaluationRepository{}

func (r evaluationRepository) SaveEvaluation(ctx context.Context, evaluation *entities.RFQEvaluation) error {
	return evaluations.upsert(ctx, r.q, evaluation)
}

func (r evaluationRepository) ListEvaluationsByResponse(ctx context.Context, responseID string) ([]*entities.RFQEvaluation, error) {
	return evaluations.list(ctx, r.q, filter{}.where("response_id = ?", responseID))
}

type contractRepository struct{ q querier }

var _ repositories.ContractRepository = contractRepository{}

func (r contractRepository) GetContract(ctx context.Context, id string) (*entities.Contract, error) {
	return contracts.get(ctx, r.q, id)
}

func (r contractRepository) ListContracts(ctx context.Context, f repositories.ContractFilter) ([]*entities.Contract, error) {
	return contracts.list(ctx, r.q, filter{}.in("status", statuses(f.Statuses)).eq("vendor_id", f.VendorID))
}

func (r contractRepository) SaveContract(ctx context.Context, contract *entities.Contract) error {
	return contracts.upsert(ctx, r.q, contract)
}

type renewalRepository struct{ q querier }

var _ repositories.RenewalRepository = renewalRepository{}

func (r renewalRepository) SaveRenewal(ctx context.Context, renewal *entities.ContractRenewal) error {
	return renewals.upsert(ctx, r.q, renewal)
}

func (r renewalRepository) ListRenewalsByContract(ctx context.Context, contractID string) ([]*entities.ContractRenewal, error) {
	return renewals.list(ctx, r.q, filter{}.where("contract_id = ?", contractID))
}

type purchaseOrderRepository struct{ q querier }

var _ repositories.PurchaseOrderRepository = purchaseOrderRepository{}

func (r purchaseOrderRepository) GetPurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error) {
	return orders.get(ctx, r.q, id)
}

func (r purchaseOrderRepository) ListPurchaseOrders(ctx context.Context, f repositories.PurchaseOrderFilter) ([]*entities.PurchaseOrder, error) {
	return orders.list(ctx, r.q, filter{}.eq("status", string(f.Status)).eq("vendor_id", f.VendorID))
}

func (r purchaseOrderRepository) SavePurchaseOrder(ctx context.Context, po *entities.PurchaseOrder) error {
	return orders.upsert(ctx, r.q, po)
}

type invoiceRepository struct{ q querier }

var _ repositories.InvoiceRepository = invoiceRepository{}

func (r invoiceRepository) GetInvoice(ctx context.Context, id string) (*entities.Invoice, error) {
	return invoices.get(ctx, r.q, id)
}

func (r invoiceRepository) GetInvoiceByNumber(ctx context.Context, vendorID, number string) (*entities.Invoice, error) {
	return invoices.one(ctx, r.q, number, "vendor_id = ? AND invoice_number = ?", vendorID, number)
}

func (r invoiceRepository) ListInvoices(ctx context.Context, f repositories.InvoiceFilter) ([]*entities.Invoice, error) {
	return invoices.list(ctx, r.q, filter{}.in("status", statuses(f.Statuses)).eq("vendor_id", f.VendorID))
}

func (r invoiceRepository) SaveInvoice(ctx context.Context, invoice *entities.Invoice) error {
	return invoices.upsert(ctx, r.q, invoice)
}

type paymentRepository struct{ q querier }

var _ repositories.PaymentRepository = paymentRepository{}

func (r paymentRepository) SavePayment(ctx context.Context, payment *entities.Payment) error {
	return payments.upsert(ctx, r.q, payment)
}

func (r paymentRepository) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]*entities.Payment, error) {
	return payments.list(ctx, r.q, filter{}.where("invoice_id = ?", invoiceID))
}
