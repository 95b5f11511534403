package event

import (
	"github.com/evogame/evolution/internal/core/id"
)

// PlayerDeath is emitted by the player controller when an enemy touches the
// player.
func PlayerDeath(sender any) Event {
	return Event{Type: id.PlayerDeath, Sender: sender}
}

// LevelOutcome is the payload of level result events.
type LevelOutcome struct {
	Level     string
	Completed bool
	Seconds   float64
	Ammo      int
	Score     int
}

// LevelFinished is emitted by the play state when a level ends, won or lost.
func LevelFinished(outcome LevelOutcome) Event {
	return Event{Type: id.LevelFinish, Payload: outcome}
}
