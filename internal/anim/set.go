package anim

import "github.com/evogame/evolution/internal/core/id"

// Set is every clip cut from one sprite sheet. The first clip added is the
// default returned for unknown names.
type Set struct {
	Texture       string
	TextureWidth  int
	TextureHeight int
	Rows, Columns int

	clips     map[id.ID]*Clip
	defaultID id.ID
}

func NewSet(texture string, width, height, rows, columns int) *Set {
	return &Set{
		Texture:       texture,
		TextureWidth:  width,
		TextureHeight: height,
		Rows:          rows,
		Columns:       columns,
		clips:         make(map[id.ID]*Clip),
	}
}

func (s *Set) Add(c *Clip) {
	if len(s.clips) == 0 {
		s.defaultID = c.ID
	}
	s.clips[c.ID] = c
}

// Clip returns the clip named clipID, or the default clip and false.
func (s *Set) Clip(clipID id.ID) (*Clip, bool) {
	if c, ok := s.clips[clipID]; ok {
		return c, true
	}
	return s.clips[s.defaultID], false
}

func (s *Set) Default() *Clip   { return s.clips[s.defaultID] }
func (s *Set) DefaultID() id.ID { return s.defaultID }
func (s *Set) Len() int         { return len(s.clips) }

// Region cuts frame n out of the sheet, reading left to right, top to bottom.
func (s *Set) Region(frame int) Region {
	if s.Columns <= 0 || s.Rows <= 0 {
		return Region{}
	}
	w := s.TextureWidth / s.Columns
	h := s.TextureHeight / s.Rows
	x := (frame % s.Columns) * w
	y := (frame / s.Columns) * h
	tw, th := float32(s.TextureWidth), float32(s.TextureHeight)
	return Region{
		U:      float32(x) / tw,
		V:      float32(y) / th,
		U2:     float32(x+w) / tw,
		V2:     float32(y+h) / th,
		Width:  w,
		Height: h,
	}
}
