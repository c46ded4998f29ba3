package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/jma-forecast/internal/logger"
)

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context, officeCodes []string) error {
	args := m.Called(ctx, officeCodes)
	return args.Error(0)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	offices := []string{"130000", "270000"}
	done := make(chan struct{}, 1)

	r := new(mockRefresher)
	r.On("Refresh", mock.Anything, offices).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			select {
			case done <- struct{}{}:
			default:
			}
		}).
		Return(nil)

	s := New(offices, time.Hour, r, logger.Discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh job did not run")
	}
}

func TestSchedulerWithoutOffices(t *testing.T) {
	r := new(mockRefresher)

	s := New(nil, time.Hour, r, logger.Discard())
	require.NoError(t, s.Start())
	s.Stop()

	r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSchedulerRunLogsFailure(t *testing.T) {
	r := new(mockRefresher)
	r.On("Refresh", mock.Anything, []string{"130000"}).Return(errors.New("all offices failed")).Once()

	s := New([]string{"130000"}, 0, r, logger.Discard())
	s.run()

	r.AssertExpectations(t)
}
