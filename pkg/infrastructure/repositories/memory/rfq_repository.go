package memory

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/domain/repositories"
)

type rfqRepository struct{ s *Store }

var _ repositories.RFQRepository = rfqRepository{}

func (r rfqRepository) GetRFQ(_ context.Context, id string) (rfq *entities.RFQ, err error) {
	err = r.s.read(func(db *database) error {
		rfq, err = db.rfqs.get(id)
		return err
	})
	return rfq, err
}

func (r rfqRepository) ListRFQs(_ context.Context, status entities.RFQStatus) (out []*entities.RFQ, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.rfqs.find(func(rfq *entities.RFQ) bool { return status == "" || rfq.Status == status })
		return err
	})
	return out, err
}

func (r rfqRepository) SaveRFQ(_ context.Context, rfq *entities.RFQ) error {
	return r.s.write(func(db *database) error { return db.rfqs.put(rfq) })
}

type responseRepository struct{ s *Store }

var _ repositories.ResponseRepository = responseRepository{}

func (r responseRepository) GetResponse(_ context.Context, id string) (resp *entities.RFQResponse, err error) {
	err = r.s.read(func(db *database) error {
		resp, err = db.responses.get(id)
		return err
	})
	return resp, err
}

func (r responseRepository) GetResponseByVendor(_ context.Context, rfqID, vendorID string) (resp *entities.RFQResponse, err error) {
	err = r.s.read(func(db *database) error {
		resp, err = db.responses.lookup(0, rfqID+"/"+vendorID)
		return err
	})
	return resp, err
}

func (r responseRepository) ListResponsesByRFQ(_ context.Context, rfqID string) (out []*entities.RFQResponse, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.responses.find(func(resp *entities.RFQResponse) bool { return resp.RFQID == rfqID })
		return err
	})
	return out, err
}

func (r responseRepository) SaveResponse(_ context.Context, response *entities.RFQResponse) error {
	return r.s.write(func(db *database) error { return db.responses.put(response) })
}

type evaluationRepository struct{ s *Store }

var _ repositories.EvaluationRepository = evaluationRepository{}

func (r evaluationRepository) SaveEvaluation(_ context.Context, evaluation *entities.RFQEvaluation) error {
	return r.s.write(func(db *database) error { return db.evaluations.put(evaluation) })
}

func (r evaluationRepository) ListEvaluationsByResponse(_ context.Context, responseID string) (out []*entities.RFQEvaluation, err error) {
	err = r.s.read(func(db *database) error {
		out, err = db.evaluations.find(func(e *entities.RFQEvaluation) bool { return e.ResponseID == responseID })
		return err
	})
	return out, err
}
