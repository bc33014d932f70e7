package animation

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ClipSet describes a library of clips in JSON or YAML.
//
//	clips:
//	  - name: bob
//	    duration: 2
//	    interpolation: eased
//	    tracks:
//	      position.y: [{t: 0, v: 0}, {t: 1, v: 1}, {t: 2, v: 0}]
type ClipSet struct {
	Clips []ClipConfig `json:"clips" yaml:"clips"`
}

type ClipConfig struct {
	Name          string                `json:"name" yaml:"name"`
	Duration      float64               `json:"duration" yaml:"duration"`
	Loop          *bool                 `json:"loop,omitempty" yaml:"loop,omitempty"`
	Speed         float64               `json:"speed,omitempty" yaml:"speed,omitempty"`
	Interpolation string                `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
	Tracks        map[string][]Keyframe `json:"tracks" yaml:"tracks"`
}

func LoadJSON(r io.Reader) (*ClipSet, error) {
	var s ClipSet
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadYAML(r io.Reader) (*ClipSet, error) {
	var s ClipSet
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Build turns the description into clips. The first malformed entry aborts the build.
func (s *ClipSet) Build() ([]*Clip, error) {
	clips := make([]*Clip, 0, len(s.Clips))
	for _, cc := range s.Clips {
		if cc.Name == "" {
			return nil, fmt.Errorf("clip without name")
		}
		interp, err := ParseInterpolation(cc.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("clip %s: %w", cc.Name, err)
		}
		c := NewClip(cc.Name, cc.Duration)
		c.Interpolation = interp
		if cc.Loop != nil {
			c.Loop = *cc.Loop
		}
		if cc.Speed != 0 {
			c.Speed = cc.Speed
		}
		for name, keys := range cc.Tracks {
			ch, err := ParseChannel(name)
			if err != nil {
				return nil, fmt.Errorf("clip %s: %w", cc.Name, err)
			}
			for _, k := range keys {
				c.AddKeyframe(ch, k.Time, k.Value)
			}
		}
		clips = append(clips, c)
	}
	return clips, nil
}
