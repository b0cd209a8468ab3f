package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRecounter struct {
	mock.Mock
}

func (m *MockRecounter) RecountSymbols(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type ctxKey struct{}

func TestAdd_InvalidSpec(t *testing.T) {
	r := New(context.Background(), zap.NewNop())

	_, err := r.Add("every tuesday", func(context.Context) {})

	assert.Error(t, err)
	assert.Zero(t, r.Len())
}

func TestAddRecount_RunsWithBaseContext(t *testing.T) {
	// Arrange
	base := context.WithValue(context.Background(), ctxKey{}, "base")
	r := New(base, zap.NewNop())
	rc := new(MockRecounter)
	ran := make(chan struct{}, 1)
	rc.On("RecountSymbols", base).Return(2, nil).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	_, err := r.AddRecount("@every 10ms", rc)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	// Act
	r.Start()
	defer r.Stop()

	// Assert
	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("recount did not run")
	}
}

func TestAddRecount_FailureIsLogged(t *testing.T) {
	r := New(context.Background(), zap.NewNop())
	rc := new(MockRecounter)
	rc.On("RecountSymbols", mock.Anything).Return(0, errors.New("store down"))

	_, err := r.AddRecount("@hourly", rc)
	require.NoError(t, err)

	entry := r.cron.Entries()[0]
	assert.NotPanics(t, func() { entry.Job.Run() })
	rc.AssertNumberOfCalls(t, "RecountSymbols", 1)
}
