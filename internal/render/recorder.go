package render

// DrawCall is one submitted sprite.
type DrawCall struct {
	Texture  string
	Vertices [SpriteSize]float32
}

// Recorder is a headless backend. It culls against a camera and keeps every
// sprite submitted since the last Flush.
type Recorder struct {
	Camera *Camera
	Calls  []DrawCall
	Texts  []string
	Frames int
}

var (
	_ Backend    = (*Recorder)(nil)
	_ Flusher    = (*Recorder)(nil)
	_ TextDrawer = (*Recorder)(nil)
)

func NewRecorder(cam *Camera) *Recorder {
	return &Recorder{Camera: cam}
}

func (r *Recorder) Draw(texture string, vertices []float32) {
	var call DrawCall
	call.Texture = texture
	copy(call.Vertices[:], vertices)
	r.Calls = append(r.Calls, call)
}

func (r *Recorder) InFrustum(box BBox) bool {
	if r.Camera == nil {
		return true
	}
	return r.Camera.InFrustum(box)
}

func (r *Recorder) DrawText(_, _ int, text string) {
	r.Texts = append(r.Texts, text)
}

func (r *Recorder) Flush() error {
	r.Frames++
	r.Calls = r.Calls[:0]
	r.Texts = r.Texts[:0]
	return nil
}
