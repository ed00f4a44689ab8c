package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/procure/pkg/domain/entities"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeJobs struct {
	sweeps    atomic.Int32
	expireErr error
	overdue   []*entities.Invoice
}

func (f *fakeJobs) ExpireContracts(context.Context) ([]*entities.Contract, error) {
	f.sweeps.Add(1)
	if f.expireErr != nil {
		return nil, f.expireErr
	}
	return []*entities.Contract{{ID: "c1", Number: "CON-2025-0001"}}, nil
}

func (f *fakeJobs) ExpiringContracts(context.Context, int) ([]*entities.Contract, error) {
	return []*entities.Contract{{ID: "c2"}, {ID: "c3"}}, nil
}

func (f *fakeJobs) OverdueInvoices(context.Context) ([]*entities.Invoice, error) {
	return f.overdue, nil
}

func TestRunOnce(t *testing.T) {
	jobs := &fakeJobs{overdue: []*entities.Invoice{{ID: "i1", Number: "INV-1"}}}
	s := New(jobs, jobs, Config{Interval: time.Hour}, zaptest.NewLogger(t))

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Expired: 1, Expiring: 2, Overdue: 1}, report)
}

func TestRunOnce_ContinuesAfterFailure(t *testing.T) {
	boom := errors.New("database locked")
	jobs := &fakeJobs{expireErr: boom, overdue: []*entities.Invoice{{ID: "i1"}, {ID: "i2"}}}
	s := New(jobs, jobs, Config{Interval: time.Hour}, nil)

	report, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, Report{Expired: 0, Expiring: 2, Overdue: 2}, report)
}

func TestStart_StopsOnCancel(t *testing.T) {
	jobs := &fakeJobs{}
	s := New(jobs, jobs, Config{Interval: 5 * time.Millisecond}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return jobs.sweeps.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestStart_RejectsZeroInterval(t *testing.T) {
	jobs := &fakeJobs{}
	err := New(jobs, jobs, Config{}, nil).Start(context.Background())
	assert.Error(t, err)
	assert.Zero(t, jobs.sweeps.Load())
}
