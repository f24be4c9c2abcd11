package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testResilientConfig() ResilientConfig {
	cfg := DefaultResilientConfig()
	cfg.OperationTimeout = 50 * time.Millisecond
	cfg.MinRequests = 2
	cfg.FailureRatio = 1
	return cfg
}

func TestResilientStore_PassesThrough(t *testing.T) {
	next := new(MockStore)
	store := NewResilientStore(next, testResilientConfig(), quietLogger())
	profile := completedProfile("p-1", testStart)

	next.On("SaveProfile", mock.Anything, profile).Return(nil)
	next.On("GetProfile", mock.Anything, "p-1").Return(profile, nil)
	next.On("CountProfiles", mock.Anything).Return(1, nil)
	next.On("ListProfiles", mock.Anything, 5, 0).Return([]*domain.Profile{profile}, nil)
	next.On("DeleteProfile", mock.Anything, "p-1").Return(nil)
	next.On("Close").Return(nil)

	ctx := context.Background()
	require.NoError(t, store.SaveProfile(ctx, profile))
	got, err := store.GetProfile(ctx, "p-1")
	require.NoError(t, err)
	assert.Same(t, profile, got)
	count, err := store.CountProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	list, err := store.ListProfiles(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, store.DeleteProfile(ctx, "p-1"))
	require.NoError(t, store.Close())

	next.AssertExpectations(t)
}

func TestResilientStore_AppliesOperationTimeout(t *testing.T) {
	next := new(MockStore)
	store := NewResilientStore(next, testResilientConfig(), quietLogger())

	next.On("GetProfile", mock.Anything, "p-1").Return(nil, context.DeadlineExceeded).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	})

	_, err := store.GetProfile(context.Background(), "p-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResilientStore_TripsOnBackendFailures(t *testing.T) {
	next := new(MockStore)
	store := NewResilientStore(next, testResilientConfig(), quietLogger())
	ctx := context.Background()

	next.On("CountProfiles", mock.Anything).Return(0, errors.New("connection refused")).Twice()

	for i := 0; i < 2; i++ {
		_, err := store.CountProfiles(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	_, err := store.CountProfiles(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	next.AssertNumberOfCalls(t, "CountProfiles", 2)
}

func TestResilientStore_DomainErrorsDoNotTrip(t *testing.T) {
	next := new(MockStore)
	store := NewResilientStore(next, testResilientConfig(), quietLogger())
	ctx := context.Background()

	next.On("GetProfile", mock.Anything, "missing").Return(nil, notFound("missing"))

	for i := 0; i < 5; i++ {
		_, err := store.GetProfile(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}
