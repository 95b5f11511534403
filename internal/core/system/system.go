package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput   Phase = iota // 0: poll keys, key-downs to the top state
	PhaseTween                // 1: advance tweens
	PhasePhysics              // 2: step the world, contact callbacks
	PhaseEvents               // 3: deliver last frame's game events
	PhaseUpdate               // 4: states and entities; sprites are submitted here
	PhaseCleanup              // 5: free entities queued for removal
	PhasePersist              // 6: flush run records
	PhaseRender               // 7: present the frame

	phaseCount
)

var phaseNames = [phaseCount]string{"input", "tween", "physics", "events", "update", "cleanup", "persist", "render"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase(?)"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Func adapts a function to a System.
type Func struct {
	P  Phase
	Fn func(dt time.Duration)
}

func (f Func) Phase() Phase            { return f.P }
func (f Func) Update(dt time.Duration) { f.Fn(dt) }
