package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-market/models"
	"vehicle-market/utils"
)

// dedupStore keeps one row per id, the way ON CONFLICT (id) DO NOTHING does.
type dedupStore struct {
	rows     []models.Vehicle
	writeErr error
}

func (s *dedupStore) Write(_ context.Context, vehicles []models.Vehicle) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	seen := map[string]bool{}
	s.rows = nil
	for _, v := range vehicles {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		s.rows = append(s.rows, models.Vehicle{ID: v.ID, Title: v.Title})
	}
	return nil
}

func (s *dedupStore) FetchAll(context.Context) ([]models.Vehicle, error) {
	return s.rows, nil
}

func TestSyncSnapshot_LeavesFetchedVehiclesUntouched(t *testing.T) {
	vehicles := []models.Vehicle{
		{ID: "1", Title: "BMW X5", IsPromoted: true},
		{ID: "1", Title: "BMW X5", IsPromoted: true},
		{ID: "2", Title: "Fiat Panda"},
	}
	store := &dedupStore{}

	stored, err := syncSnapshot(context.Background(), store, vehicles, utils.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	require.Len(t, vehicles, 3)
	assert.True(t, vehicles[0].IsPromoted)
	assert.True(t, vehicles[1].IsPromoted)
}

func TestSyncSnapshot_WriteError(t *testing.T) {
	store := &dedupStore{writeErr: assert.AnError}

	_, err := syncSnapshot(context.Background(), store, []models.Vehicle{{ID: "1"}}, utils.NewNopLogger())
	assert.ErrorIs(t, err, assert.AnError)
}
