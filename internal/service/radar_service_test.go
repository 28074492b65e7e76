package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Antenna/internal/model"
	"Antenna/internal/repo"
)

type mockRadarRepo struct{ mock.Mock }

func (m *mockRadarRepo) ListSection(ctx context.Context, userID int64, section string, offset, limit int) ([]model.Radar, int64, error) {
	args := m.Called(ctx, userID, section, offset, limit)
	v, _ := args.Get(0).([]model.Radar)
	return v, args.Get(1).(int64), args.Error(2)
}
func (m *mockRadarRepo) Upsert(ctx context.Context, radars []model.Radar) error {
	return m.Called(ctx, radars).Error(0)
}
func (m *mockRadarRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.RadarRepository = (*mockRadarRepo)(nil)

func TestRadarService_Page(t *testing.T) {
	ctx := context.Background()
	m := new(mockRadarRepo)
	svc := NewRadarService(m, nil)

	t.Run("default and clamped page size", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("ListSection", mock.Anything, int64(1), "Open", 0, DefaultPageSize).Return([]model.Radar{{ID: 1}}, int64(1), nil).Once()
		m.On("ListSection", mock.Anything, int64(1), "Open", 5, MaxPageSize).Return([]model.Radar{}, int64(1), nil).Once()

		p, err := svc.Page(ctx, 1, "Open", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, p.RowsInCache)
		assert.Len(t, p.Radars, 1)

		p, err = svc.Page(ctx, 1, "Open", 5, 10_000)
		require.NoError(t, err)
		assert.Equal(t, 5, p.RowStart)
		m.AssertExpectations(t)
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := svc.Page(ctx, 1, "Secret", 0, 10)
		assert.ErrorIs(t, err, ErrUnknownSection)
	})

	t.Run("negative row start", func(t *testing.T) {
		_, err := svc.Page(ctx, 1, "Open", -1, 10)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("repo error", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("ListSection", mock.Anything, int64(1), "Closed", 0, 10).Return(nil, int64(0), errors.New("db down")).Once()
		_, err := svc.Page(ctx, 1, "Closed", 0, 10)
		assert.Error(t, err)
	})
}

func TestRadarService_SeedSample(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds empty account", func(t *testing.T) {
		m := new(mockRadarRepo)
		m.On("CountByUser", mock.Anything, int64(2)).Return(int64(0), nil).Once()
		m.On("Upsert", mock.Anything, mock.MatchedBy(func(rs []model.Radar) bool {
			if len(rs) == 0 {
				return false
			}
			for _, r := range rs {
				if r.UserID != 2 || r.ID == 0 || r.OriginatedAt.IsZero() {
					return false
				}
			}
			return true
		})).Return(nil).Once()
		require.NoError(t, NewRadarService(m, nil).SeedSample(ctx, 2))
		m.AssertExpectations(t)
	})

	t.Run("skips non-empty account", func(t *testing.T) {
		m := new(mockRadarRepo)
		m.On("CountByUser", mock.Anything, int64(2)).Return(int64(3), nil).Once()
		require.NoError(t, NewRadarService(m, nil).SeedSample(ctx, 2))
		m.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}
