//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/flood-zone-service/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/flood-zone-service/internal/adapter/redis"
	"github.com/couchcryptid/flood-zone-service/internal/domain"
	"github.com/couchcryptid/flood-zone-service/internal/observability"
	"github.com/couchcryptid/flood-zone-service/internal/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisMirror verifies that commits persisted by one instance are
// restored in order and pushed to another instance's store.
func TestRedisMirror(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	addr := startRedis(ctx, t)

	clientA := redisadapter.Open(addr, "", 0)
	t.Cleanup(func() { _ = clientA.Close() })
	clientB := redisadapter.Open(addr, "", 0)
	t.Cleanup(func() { _ = clientB.Close() })

	mirrorA := redisadapter.NewMirror(clientA, "it", discardLogger())
	mirrorB := redisadapter.NewMirror(clientB, "it", discardLogger())
	require.NoError(t, mirrorA.Ping(ctx))

	storeA := zone.NewStore(discardLogger(), observability.NewMetricsForTesting(),
		zone.WithPersister("redis", mirrorA))
	t.Cleanup(storeA.Close)
	storeB := zone.NewStore(discardLogger(), observability.NewMetricsForTesting())
	t.Cleanup(storeB.Close)

	watchCtx, stopWatch := context.WithCancel(ctx)
	watchErr := make(chan error, 1)
	go func() { watchErr <- mirrorB.Watch(watchCtx, storeB) }()

	// Re-commit until the watcher has subscribed and picked the change up.
	require.Eventually(t, func() bool {
		storeA.AddOrMerge(domain.StateWeatherZone(domain.StateWeather{State: "Johor", Severity: 6, IsRaining: true}))
		storeA.Wait()
		z, ok := storeB.Get("live_johor")
		return ok && z.Severity == 6
	}, 30*time.Second, 200*time.Millisecond)

	_, seedKept := storeB.Get("kl")
	assert.True(t, seedKept, "seed localities survive a replace from the mirror")

	storeA.Upsert(domain.FloodZone{ID: "user_reported_it-1", Name: "Bangi", State: "Selangor", Severity: 5, Provenance: domain.ProvenanceUser})
	storeA.Wait()

	restored, err := mirrorB.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, "live_johor", restored[0].ID)
	assert.Equal(t, "user_reported_it-1", restored[1].ID)

	stopWatch()
	assert.NoError(t, <-watchErr)
}

// TestPostgresArchive verifies that every commit is appended to the history
// table and read back newest first.
func TestPostgresArchive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	archive, err := postgres.Open(startPostgres(ctx, t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	require.NoError(t, archive.EnsureSchema(ctx))
	require.NoError(t, archive.EnsureSchema(ctx), "schema creation is repeatable")

	store := zone.NewStore(discardLogger(), observability.NewMetricsForTesting(),
		zone.WithPersister("postgres", archive))
	t.Cleanup(store.Close)

	for _, sev := range []int{3, 7, 5} {
		store.AddOrMerge(domain.StateWeatherZone(domain.StateWeather{State: "Kelantan", Severity: sev}))
		store.Wait()
	}

	history, err := archive.History(ctx, "live_kelantan", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{5, 7, 3}, []int{history[0].Severity, history[1].Severity, history[2].Severity})
	assert.Equal(t, domain.ProvenanceLive, history[0].Provenance)
	assert.Equal(t, "Kelantan", history[0].State)

	limited, err := archive.History(ctx, "live_kelantan", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
