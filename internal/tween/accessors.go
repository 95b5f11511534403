package tween

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/render"
)

// EntityPosition moves an entity. Physics is disabled around each write so
// the body follows the entity instead of the other way round.
type EntityPosition struct{ E *ecs.Entity }

func (a EntityPosition) Get() mgl64.Vec3 { return a.E.Position() }

func (a EntityPosition) Set(v mgl64.Vec3) {
	a.E.OnMessage(nil, id.DisablePhysics, nil)
	a.E.SetPosition(v)
	a.E.OnMessage(nil, id.EnablePhysics, nil)
}

// EntityScale animates the uniform scale in X.
type EntityScale struct{ E *ecs.Entity }

func (a EntityScale) Get() mgl64.Vec3  { return mgl64.Vec3{a.E.Scale(), 0, 0} }
func (a EntityScale) Set(v mgl64.Vec3) { a.E.SetScale(v.X()) }

// EntityRotation animates the rotation in degrees in X.
type EntityRotation struct{ E *ecs.Entity }

func (a EntityRotation) Get() mgl64.Vec3  { return mgl64.Vec3{a.E.Rotation(), 0, 0} }
func (a EntityRotation) Set(v mgl64.Vec3) { a.E.SetRotation(v.X()) }

// CameraPosition moves a camera on the XY plane.
type CameraPosition struct{ C *render.Camera }

func (a CameraPosition) Get() mgl64.Vec3 { return a.C.Position }

func (a CameraPosition) Set(v mgl64.Vec3) {
	a.C.Position = mgl64.Vec3{v.X(), v.Y(), a.C.Position.Z()}
}

// CameraZoom animates zoom in X.
type CameraZoom struct{ C *render.Camera }

func (a CameraZoom) Get() mgl64.Vec3  { return mgl64.Vec3{a.C.Zoom, 0, 0} }
func (a CameraZoom) Set(v mgl64.Vec3) { a.C.Zoom = v.X() }
