package repositories

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// ContractFilter narrows ListContracts. Empty Statuses matches any status.
type ContractFilter struct {
	Statuses []entities.ContractStatus
	VendorID string
}

// ContractRepository provides access to contracts
type ContractRepository interface {
	GetContract(ctx context.Context, id string) (*entities.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]*entities.Contract, error)
	SaveContract(ctx context.Context, contract *entities.Contract) error
}

// RenewalRepository stores contract renewal history
type RenewalRepository interface {
	SaveRenewal(ctx context.Context, renewal *entities.ContractRenewal) error
	ListRenewalsByContract(ctx context.Context, contractID string) ([]*entities.ContractRenewal, error)
}

// PurchaseOrderFilter narrows ListPurchaseOrders.
type PurchaseOrderFilter struct {
	Status   entities.POStatus
	VendorID string
}

// PurchaseOrderRepository provides access to purchase orders with their items
type PurchaseOrderRepository interface {
	GetPurchaseOrder(ctx context.Context, id string) (*entities.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]*entities.PurchaseOrder, error)
	SavePurchaseOrder(ctx context.Context, po *entities.PurchaseOrder) error
}
