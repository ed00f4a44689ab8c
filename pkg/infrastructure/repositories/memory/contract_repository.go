package memory

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type contractRepository struct{ s *Store }

var _ repositories.ContractRepository = contractRepository{}

func (r contractRepository) GetContract(_ context.Context, id string) (c *entities.Contract, err error) {
	err = r.s.read(func(db *database) error {
		c, err = db.contracts.get(id)
		return err
	})
	return c, err
}

func (r contractRepository) ListContracts(_ context.Context, filter repositories.ContractFilter) (out []*entities.Contract, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.contracts.find(func(c *entities.Contract) bool {
			return statusIn(filter.Statuses, c.Status) &&
				(filter.VendorID == "" || c.VendorID == filter.VendorID)
		})
		return err
	})
	return out, err
}

func (r contractRepository) SaveContract(_ context.Context, contract *entities.Contract) error {
	return r.s.write(func(db *database) error { return db.contracts.put(contract) })
}

type renewalRepository struct{ s *Store }

var _ repositories.RenewalRepository = renewalRepository{}

func (r renewalRepository) SaveRenewal(_ context.Context, renewal *entities.ContractRenewal) error {
	return r.s.write(func(db *database) error { return db.renewals.put(renewal) })
}

func (r renewalRepository) ListRenewalsByContract(_ context.Context, contractID string) (out []*entities.ContractRenewal, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.renewals.find(func(rn *entities.ContractRenewal) bool { return rn.ContractID == contractID })
		return err
	})
	return out, err
}

type purchaseOrderRepository struct{ s *Store }

var _ repositories.PurchaseOrderRepository = purchaseOrderRepository{}

func (r purchaseOrderRepository) GetPurchaseOrder(_ context.Context, id string) (po *entities.PurchaseOrder, err error) {
	err = r.s.read(func(db *database) error {
		po, err = db.orders.get(id)
		return err
	})
	return po, err
}

func (r purchaseOrderRepository) ListPurchaseOrders(_ context.Context, filter repositories.PurchaseOrderFilter) (out []*entities.PurchaseOrder, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.orders.find(func(po *entities.PurchaseOrder) bool {
			return (filter.Status == "" || po.Status == filter.Status) &&
				(filter.VendorID == "" || po.VendorID == filter.VendorID)
		})
		return err
	})
	return out, err
}

func (r purchaseOrderRepository) SavePurchaseOrder(_ context.Context, po *entities.PurchaseOrder) error {
	return r.s.write(func(db *database) error { return db.orders.put(po) })
}
