// Package id interns names to stable integer identifiers. Built-in engine and
// gameplay names are compile-time constants; data-driven names (animation
// clips, fixture tags from asset files) are interned on first lookup.
package id

import (
	"fmt"
	"strconv"
)

// ID is an interned name. The zero value is Invalid.
type ID int32

// Invalid is never handed out by a Registry.
const Invalid ID = 0

// Built-in identifiers. The order here is the order NewRegistry seeds them,
// so Intern(name) returns the constant for every name in builtinNames.
const (
	_ ID = iota

	// Entity types.
	Empty
	Caveman
	Enemy
	Item
	Ammo
	Level

	// Entity states.
	Idle
	Walk
	Jump
	Erase

	// Component types.
	AnimationComponent
	PhysicsComponent
	PlayerController
	EnemyController
	AmmoController
	ItemController

	// Entity events.
	EntityMoved
	EntityRotated
	EntityScaled
	EntityStateChanged
	EntityBatched
	AnimationFinished
	EnablePhysics
	DisablePhysics
	BeginContact
	EndContact
	PlayerDeath

	// Fixture and trigger tags.
	Foot
	LevelFinish
	Fall

	lastBuiltin
)

var builtinNames = [...]string{
	Empty:              "Empty",
	Caveman:            "caveman",
	Enemy:              "enemy",
	Item:               "item",
	Ammo:               "ammo",
	Level:              "level",
	Idle:               "idle",
	Walk:               "walk",
	Jump:               "jump",
	Erase:              "erase",
	AnimationComponent: "AnimationComponent",
	PhysicsComponent:   "PhysicsComponent",
	PlayerController:   "PlayerController",
	EnemyController:    "EnemyController",
	AmmoController:     "AmmoController",
	ItemController:     "ItemController",
	EntityMoved:        "EntityMoved",
	EntityRotated:      "EntityRotated",
	EntityScaled:       "EntityScaled",
	EntityStateChanged: "EntityStateChanged",
	EntityBatched:      "EntityBatched",
	AnimationFinished:  "AnimationFinished",
	EnablePhysics:      "EnablePhysics",
	DisablePhysics:     "DisablePhysics",
	BeginContact:       "BeginContact",
	EndContact:         "EndContact",
	PlayerDeath:        "onPlayerDeath",
	Foot:               "foot",
	LevelFinish:        "levelFinish",
	Fall:               "fall",
}

// Builtin reports whether v is one of the compile-time identifiers.
func (v ID) Builtin() bool { return v > Invalid && v < lastBuiltin }

// String returns the built-in name, or "#n" for data-driven identifiers.
// Use Registry.Name when the registry is at hand.
func (v ID) String() string {
	if v.Builtin() {
		return builtinNames[v]
	}
	return "#" + strconv.Itoa(int(v))
}

// Registry maps names to identifiers and back. Not safe for concurrent use:
// it is only touched from the simulation goroutine.
type Registry struct {
	ids   map[string]ID
	names []string // index = ID
}

// NewRegistry returns a registry pre-seeded with the built-in names.
func NewRegistry() *Registry {
	r := &Registry{
		ids:   make(map[string]ID, 128),
		names: make([]string, 1, 128),
	}
	for v := Invalid + 1; v < lastBuiltin; v++ {
		r.Intern(builtinNames[v])
	}
	return r
}

// Intern returns the identifier for name, assigning the next one on first use.
func (r *Registry) Intern(name string) ID {
	if v, ok := r.ids[name]; ok {
		return v
	}
	v := ID(len(r.names))
	r.names = append(r.names, name)
	r.ids[name] = v
	return v
}

// Lookup returns the identifier for name without interning it.
func (r *Registry) Lookup(name string) (ID, bool) {
	v, ok := r.ids[name]
	return v, ok
}

// Resolve returns the name behind v.
func (r *Registry) Resolve(v ID) (string, bool) {
	if v <= Invalid || int(v) >= len(r.names) {
		return "", false
	}
	return r.names[v], true
}

// Name is Resolve for log fields.
func (r *Registry) Name(v ID) string {
	if name, ok := r.Resolve(v); ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(v))
}

// Len returns the number of interned names.
func (r *Registry) Len() int { return len(r.names) - 1 }
