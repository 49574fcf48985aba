package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"parklot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSpotsAssignsSequentialLocations(t *testing.T) {
	env := newTestEnv(t)

	report, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
		Counts: map[string]int{"mini": 12},
	})
	require.NoError(t, err)
	assert.Equal(t, 12, report.Added[domain.SpotMini])
	assert.Equal(t, 12, report.Totals[domain.SpotMini])

	spots, err := env.spots.FindByType(context.Background(), domain.SpotMini)
	require.NoError(t, err)
	require.Len(t, spots, 12)

	want := make(map[string]bool)
	for col := 1; col <= 10; col++ {
		want[fmt.Sprintf("S1-R1-C%d", col)] = false
	}
	want["S1-R2-C1"] = false
	want["S1-R2-C2"] = false

	for _, spot := range spots {
		seen, ok := want[spot.Location]
		require.True(t, ok, "unexpected location %s", spot.Location)
		require.False(t, seen, "duplicate location %s", spot.Location)
		want[spot.Location] = true
		assert.True(t, spot.Active)
		assert.False(t, spot.IsBooked)
		assert.Equal(t, int64(20), spot.HourlyRate)
	}

	assert.Equal(t, 12, env.board.Snapshot().Mini.Free)
}

func TestAddSpotsMultipleTypes(t *testing.T) {
	env := newTestEnv(t)

	report, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
		Counts: map[string]int{"mini": 2, "compact": 3, "large": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added[domain.SpotMini])
	assert.Equal(t, 3, report.Added[domain.SpotCompact])
	assert.Equal(t, 1, report.Added[domain.SpotLarge])

	snap := env.board.Snapshot()
	assert.Equal(t, 2, snap.Mini.Free)
	assert.Equal(t, 3, snap.Compact.Free)
	assert.Equal(t, 1, snap.Large.Free)
	assert.Equal(t, 6, snap.TotalFree)
}

func TestAddSpotsContinuesFromExistingCapacity(t *testing.T) {
	env := newTestEnv(t)
	env.addSpots(t, domain.SpotCompact, 3)
	env.addSpots(t, domain.SpotCompact, 2)

	spots, err := env.spots.FindByType(context.Background(), domain.SpotCompact)
	require.NoError(t, err)
	require.Len(t, spots, 5)
	assert.Equal(t, "S2-R1-C5", spots[4].Location)
}

func TestAddSpotsInvalidTypeAbortsWholeBatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
		Counts: map[string]int{"mini": 2, "jumbo": 1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSpotType)

	spots, findErr := env.spots.FindByType(context.Background(), domain.SpotMini)
	require.NoError(t, findErr)
	assert.Empty(t, spots, "validation failure must not leave partial state")
}

func TestAddSpotsNonPositiveCountRejected(t *testing.T) {
	env := newTestEnv(t)

	for _, count := range []int{0, -3} {
		_, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
			Counts: map[string]int{"large": count},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCount)
	}
}

func TestAddSpotsCollisionKeepsBoardMatchingPersistedSpots(t *testing.T) {
	env := newTestEnv(t)

	// A spot of another type squatting on a mini-section location is
	// invisible to the mini capacity scan but trips the existence re-check.
	_, err := env.spots.Create(context.Background(), &domain.ParkingSpot{
		Type:       domain.SpotCompact,
		Location:   domain.FormatLocation(1, 1, 3),
		HourlyRate: domain.SpotCompact.HourlyRate(),
		Active:     true,
	})
	require.NoError(t, err)

	report, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
		Counts: map[string]int{"mini": 5},
	})
	assert.ErrorIs(t, err, domain.ErrLocationCollision)
	assert.Equal(t, 2, report.Added[domain.SpotMini])

	// Counters must cover exactly the spots that landed before the abort.
	assert.Equal(t, 2, env.board.Snapshot().Mini.Free)

	_, err = env.allocation.Reserve(context.Background(), domain.SpotMini)
	require.NoError(t, err)
	snap := env.board.Snapshot()
	assert.Equal(t, 1, snap.Mini.Free)
	assert.Equal(t, 1, snap.Mini.Booked)
}

func TestConcurrentExpansionsNeverCollide(t *testing.T) {
	env := newTestEnv(t)

	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.admin.AddSpots(context.Background(), domain.AddSpotsDTO{
				Counts: map[string]int{"large": perWorker},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	spots, err := env.spots.FindByType(context.Background(), domain.SpotLarge)
	require.NoError(t, err)
	assert.Len(t, spots, workers*perWorker)

	locations := make(map[string]bool)
	for _, spot := range spots {
		assert.False(t, locations[spot.Location], "duplicate location %s", spot.Location)
		locations[spot.Location] = true
	}
	assert.Equal(t, workers*perWorker, env.board.Snapshot().Large.Free)
}
