package checkins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/shared/validate"
)

func intPtr(v int) *int { return &v }

func newTestService() *Service {
	return NewService(NewMemoryRepo(), decision.DefaultRules())
}

func TestSubmitUpsertsPerUTCDay(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	morning := time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC)

	first, err := svc.Submit(ctx, "user-1", SubmitRequest{
		Energy: intPtr(2), Pain: intPtr(1), Confidence: intPtr(3),
		SideEffects: []string{" nausea ", "", "nausea"},
	}, morning)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04", first.Date)
	assert.Equal(t, []string{"nausea"}, first.SideEffects)
	assert.Nil(t, first.UpdatedAt)

	second, err := svc.Submit(ctx, "user-1", SubmitRequest{
		Energy: intPtr(4), Pain: intPtr(0), Confidence: intPtr(4),
	}, morning.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotNil(t, second.UpdatedAt)

	today, err := svc.Today(ctx, "user-1", morning.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, today.Energy)

	_, err = svc.Today(ctx, "user-1", morning.Add(24*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC)

	_, err := svc.Submit(context.Background(), "user-1", SubmitRequest{Pain: intPtr(1), Confidence: intPtr(3)}, now)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "is required", validate.Fields(err)["energy"])

	_, err = svc.Submit(context.Background(), "user-1", SubmitRequest{Energy: intPtr(9), Pain: intPtr(1), Confidence: intPtr(3)}, now)
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, decision.ErrInvalidInput)
}
