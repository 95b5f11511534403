package asset

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evogame/evolution/internal/anim"
	"github.com/evogame/evolution/internal/core/id"
)

// animationFile is one sprite sheet and the clips cut from it. The sheet
// size is given in pixels so regions can be computed without decoding the
// image.
type animationFile struct {
	Texture       string          `yaml:"texture"`
	Width         int             `yaml:"width"`
	Height        int             `yaml:"height"`
	Rows          int             `yaml:"rows"`
	Columns       int             `yaml:"columns"`
	FrameDuration float64         `yaml:"frame_duration"` // seconds
	Animations    []animationClip `yaml:"animations"`
}

type animationClip struct {
	Name   string `yaml:"name"`
	Frames []int  `yaml:"frames"`
	Mode   string `yaml:"mode"`
}

type AnimationLoader struct {
	ids *id.Registry
}

func (l *AnimationLoader) Decode(path string, raw []byte) (any, error) {
	var f animationFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse animation: %w", err)
	}
	if f.Rows <= 0 || f.Columns <= 0 || f.Width <= 0 || f.Height <= 0 {
		return nil, errors.New("animation sheet needs positive rows, columns, width and height")
	}
	if len(f.Animations) == 0 {
		return nil, errors.New("animation file has no clips")
	}
	cells := f.Rows * f.Columns
	for _, c := range f.Animations {
		if _, err := anim.ParseMode(c.Mode); err != nil {
			return nil, fmt.Errorf("clip %s: %w", c.Name, err)
		}
		for _, n := range c.Frames {
			if n < 0 || n >= cells {
				return nil, fmt.Errorf("clip %s: frame %d outside %dx%d sheet", c.Name, n, f.Columns, f.Rows)
			}
		}
	}
	return &f, nil
}

func (l *AnimationLoader) Resolve(path string, decoded any) (any, error) {
	f := decoded.(*animationFile)
	set := anim.NewSet(f.Texture, f.Width, f.Height, f.Rows, f.Columns)
	frameDuration := time.Duration(f.FrameDuration * float64(time.Second))
	for _, c := range f.Animations {
		mode, _ := anim.ParseMode(c.Mode)
		regions := make([]anim.Region, len(c.Frames))
		for i, n := range c.Frames {
			regions[i] = set.Region(n)
		}
		set.Add(anim.NewClip(l.ids.Intern(c.Name), frameDuration, mode, regions))
	}
	return set, nil
}

// Animation returns a loaded sprite sheet.
func (m *Manager) Animation(path string) (*anim.Set, error) {
	v, err := m.Get(path, KindAnimation)
	if err != nil {
		return nil, err
	}
	return v.(*anim.Set), nil
}
