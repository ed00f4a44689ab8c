package sqlite

// Every table keeps the full entity as JSON in data. The other columns exist
// for lookups, filters and unique constraints.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vendor_categories (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vendors (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE,
	company_name TEXT UNIQUE,
	contact_email TEXT UNIQUE,
	tax_id TEXT UNIQUE,
	category_id TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vendors_status ON vendors(status);
CREATE INDEX IF NOT EXISTS idx_vendors_category ON vendors(category_id);

CREATE TABLE IF NOT EXISTS vendor_reviews (
	id TEXT PRIMARY KEY,
	vendor_id TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_vendor ON vendor_reviews(vendor_id);

CREATE TABLE IF NOT EXISTS vendor_warnings (
	id TEXT PRIMARY KEY,
	vendor_id TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warnings_vendor ON vendor_warnings(vendor_id);

CREATE TABLE IF NOT EXISTS rfqs (
	id TEXT PRIMARY KEY,
	slug TEXT UNIQUE,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rfqs_status ON rfqs(status);

CREATE TABLE IF NOT EXISTS rfq_responses (
	id TEXT PRIMARY KEY,
	rfq_id TEXT NOT NULL,
	vendor_id TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL,
	UNIQUE(rfq_id, vendor_id)
);

CREATE TABLE IF NOT EXISTS rfq_evaluations (
	id TEXT PRIMARY KEY,
	response_id TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_response ON rfq_evaluations(response_id);

CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	contract_number TEXT UNIQUE,
	vendor_id TEXT NOT NULL,
	status TEXT NOT NULL,
	end_date TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
CREATE INDEX IF NOT EXISTS idx_contracts_end_date ON contracts(end_date);

CREATE TABLE IF NOT EXISTS contract_renewals (
	id TEXT PRIMARY KEY,
	contract_id TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_renewals_contract ON contract_renewals(contract_id);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id TEXT PRIMARY KEY,
	po_number TEXT UNIQUE,
	vendor_id TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_purchase_orders_vendor ON purchase_orders(vendor_id);

CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	vendor_id TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	status TEXT NOT NULL,
	due_date TEXT NOT NULL,
	data TEXT NOT NULL,
	UNIQUE(vendor_id, invoice_number)
);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);
CREATE INDEX IF NOT EXISTS idx_invoices_due_date ON invoices(due_date);

CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	invoice_id TEXT NOT NULL,
	payment_reference TEXT UNIQUE,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments(invoice_id);

CREATE TABLE IF NOT EXISTS sequences (
	kind TEXT NOT NULL,
	year INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (kind, year)
);
`
