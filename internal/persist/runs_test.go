package persist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/evogame/evolution/internal/core/event"
)

func TestNewRunCopiesOutcome(t *testing.T) {
	session := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	o := event.LevelOutcome{Level: "data/level1.yaml", Completed: true, Seconds: 42.5, Ammo: 3, Score: 1250}

	a := NewRun(session, o, at)
	b := NewRun(session, o, at)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, session, a.Session)
	assert.Equal(t, "data/level1.yaml", a.Level)
	assert.True(t, a.Completed)
	assert.Equal(t, 42.5, a.Seconds)
	assert.Equal(t, 3, a.Ammo)
	assert.Equal(t, 1250, a.Score)
	assert.Equal(t, time.UTC, a.FinishedAt.Location())
	assert.True(t, at.Equal(a.FinishedAt))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_runs.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "CREATE TABLE runs")
}
