package cgroups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolFutureResolvesOnce(t *testing.T) {
	f := newBoolFuture()
	f.resolve(true, nil)

	ctx := context.Background()
	got, err := f.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBoolFutureCarriesError(t *testing.T) {
	f := newBoolFuture()
	boom := assert.AnError
	f.resolve(false, boom)

	got, err := f.Get(context.Background())
	assert.False(t, got)
	assert.ErrorIs(t, err, boom)
}

func TestBoolFutureGetCancelledBeforeResolve(t *testing.T) {
	f := newBoolFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventFutureResolvesOnce(t *testing.T) {
	f := newEventFuture()
	f.resolve(42, nil)

	got, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, got)
}

func TestEventFutureTimesOutIfNeverResolved(t *testing.T) {
	f := newEventFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
