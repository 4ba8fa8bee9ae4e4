package repository

import (
	"testing"
	"time"

	"github.com/anasmostafa23/Safety-Hub/models"

	"github.com/stretchr/testify/assert"
)

func TestSessionRepository_CRUD(t *testing.T) {
	repo := NewSessionRepository()

	t.Run("Get on an empty store misses", func(t *testing.T) {
		session, exists := repo.Get("u1")
		assert.False(t, exists)
		assert.Nil(t, session)
	})

	t.Run("Put then Get round-trips", func(t *testing.T) {
		repo.Put(models.NewAuditSession("u1"))

		session, exists := repo.Get("u1")
		assert.True(t, exists)
		assert.Equal(t, "u1", session.UserID)
		assert.Equal(t, models.PhaseAwaitingName, session.Phase)
		assert.Equal(t, 1, repo.Count())
	})

	t.Run("Put replaces the existing session", func(t *testing.T) {
		replacement := models.NewAuditSession("u1")
		replacement.FullName = "Ivan Petrov"
		repo.Put(replacement)

		session, _ := repo.Get("u1")
		assert.Equal(t, "Ivan Petrov", session.FullName)
		assert.Equal(t, 1, repo.Count())
	})

	t.Run("Remove deletes and is idempotent", func(t *testing.T) {
		repo.Remove("u1")
		_, exists := repo.Get("u1")
		assert.False(t, exists)

		repo.Remove("u1")
		assert.Equal(t, 0, repo.Count())
	})
}

func TestSessionRepository_Sweep(t *testing.T) {
	repo := NewSessionRepository().(*sessionRepository)

	stale := models.NewAuditSession("stale")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	repo.Put(stale)

	fresh := models.NewAuditSession("fresh")
	repo.Put(fresh)

	evicted := repo.sweep(time.Hour)
	assert.Equal(t, 1, evicted)

	_, exists := repo.Get("stale")
	assert.False(t, exists)
	_, exists = repo.Get("fresh")
	assert.True(t, exists)
}

func TestStartSweeper(t *testing.T) {
	t.Run("Evicts idle sessions in the background", func(t *testing.T) {
		repo := NewSessionRepository()

		stale := models.NewAuditSession("stale")
		stale.UpdatedAt = time.Now().Add(-time.Minute)
		repo.Put(stale)

		stop := StartSweeper(repo, 10*time.Millisecond, time.Second)
		defer close(stop)

		assert.Eventually(t, func() bool {
			return repo.Count() == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Zero TTL disables the sweep", func(t *testing.T) {
		repo := NewSessionRepository()
		stale := models.NewAuditSession("stale")
		stale.UpdatedAt = time.Now().Add(-24 * time.Hour)
		repo.Put(stale)

		stop := StartSweeper(repo, 10*time.Millisecond, 0)
		defer close(stop)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 1, repo.Count())
	})
}
