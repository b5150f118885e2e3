package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio/internal/apperror"
)

func TestInFlight_OneWinner(t *testing.T) {
	f := NewInFlight()

	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	releases := make(chan func(), 16)

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := f.Acquire("u1", "profile")
			if err == nil {
				wins.Add(1)
				releases <- release
				return
			}
			assert.ErrorIs(t, err, apperror.ErrBusy)
		}()
	}
	close(start)
	wg.Wait()
	close(releases)

	assert.Equal(t, int32(1), wins.Load())
	for release := range releases {
		release()
		release() // idempotent
	}

	release, err := f.Acquire("u1", "profile")
	require.NoError(t, err)
	release()
}

func TestInFlight_KeyedByUserAndResource(t *testing.T) {
	f := NewInFlight()

	_, err := f.Acquire("u1", "profile")
	require.NoError(t, err)
	_, err = f.Acquire("u2", "profile")
	require.NoError(t, err)
	_, err = f.Acquire("u1", "item:create")
	require.NoError(t, err)

	_, err = f.Acquire("u1", "profile")
	assert.ErrorIs(t, err, apperror.ErrBusy)
	_, err = f.Acquire("u2", "profile")
	assert.ErrorIs(t, err, apperror.ErrBusy)
}

func TestInFlight_StaleReleaseKeepsNewHolder(t *testing.T) {
	f := NewInFlight()

	first, err := f.Acquire("u1", "profile")
	require.NoError(t, err)
	first()

	second, err := f.Acquire("u1", "profile")
	require.NoError(t, err)
	defer second()

	// A repeated release of the finished mutation must not free the key.
	first()
	_, err = f.Acquire("u1", "profile")
	assert.ErrorIs(t, err, apperror.ErrBusy)
}
