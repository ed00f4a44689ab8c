package repositories

import (
	"context"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// RFQRepository provides access to RFQs and their invitations
type RFQRepository interface {
	GetRFQ(ctx context.Context, id string) (*entities.RFQ, error)
	// ListRFQs returns RFQs in status, or all of them when status is empty.
	ListRFQs(ctx context.Context, status entities.RFQStatus) ([]*entities.RFQ, error)
	SaveRFQ(ctx context.Context, rfq *entities.RFQ) error
}

// ResponseRepository stores vendor quotes. (RFQID, VendorID) is unique.
type ResponseRepository interface {
	GetResponse(ctx context.Context, id string) (*entities.RFQResponse, error)
	GetResponseByVendor(ctx context.Context, rfqID, vendorID string) (*entities.RFQResponse, error)
	ListResponsesByRFQ(ctx context.Context, rfqID string) ([]*entities.RFQResponse, error)
	SaveResponse(ctx context.Context, response *entities.RFQResponse) error
}

// EvaluationRepository stores evaluator scores
type EvaluationRepository interface {
	SaveEvaluation(ctx context.Context, evaluation *entities.RFQEvaluation) error
	ListEvaluationsByResponse(ctx context.Context, responseID string) ([]*entities.RFQEvaluation, error)
}
