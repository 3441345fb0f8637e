package mediasync

import (
	"errors"
	"fmt"
	"math"

	omitnilpointers "github.com/sharetube/mediasync/pkg/omit-nil-pointers"
)

var ErrInvalidAttributes = errors.New("invalid attributes")

type Field string

const (
	FieldPlay        Field = "play"
	FieldSeek        Field = "seek"
	FieldVolume      Field = "volume"
	FieldMute        Field = "mute"
	FieldCurrentTime Field = "currentTime"
)

// Fields lists every attribute field in a stable order.
var Fields = []Field{FieldPlay, FieldSeek, FieldVolume, FieldMute, FieldCurrentTime}

// State is the shared attribute set of one media instance.
type State struct {
	Play        bool    `json:"play" redis:"play"`
	Seek        float64 `json:"seek" redis:"seek"`
	Volume      float64 `json:"volume" redis:"volume"`
	Mute        bool    `json:"mute" redis:"mute"`
	CurrentTime float64 `json:"currentTime" redis:"currentTime"`
}

func DefaultState() State {
	return State{
		Play:        false,
		Seek:        0,
		Volume:      1,
		Mute:        false,
		CurrentTime: 0,
	}
}

// Value returns the value held by field f, or nil for an unknown field.
func (s State) Value(f Field) any {
	switch f {
	case FieldPlay:
		return s.Play
	case FieldSeek:
		return s.Seek
	case FieldVolume:
		return s.Volume
	case FieldMute:
		return s.Mute
	case FieldCurrentTime:
		return s.CurrentTime
	}

	return nil
}

// Apply returns a copy of s with every field set in p overwritten.
func (s State) Apply(p Partial) State {
	if p.Play != nil {
		s.Play = *p.Play
	}
	if p.Seek != nil {
		s.Seek = *p.Seek
	}
	if p.Volume != nil {
		s.Volume = *p.Volume
	}
	if p.Mute != nil {
		s.Mute = *p.Mute
	}
	if p.CurrentTime != nil {
		s.CurrentTime = *p.CurrentTime
	}

	return s
}

// Partial is a write of a subset of the attribute fields. Nil fields are left
// untouched.
type Partial struct {
	Play        *bool    `json:"play,omitempty"`
	Seek        *float64 `json:"seek,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Mute        *bool    `json:"mute,omitempty"`
	CurrentTime *float64 `json:"currentTime,omitempty"`
}

func (p Partial) IsEmpty() bool {
	return p.Play == nil && p.Seek == nil && p.Volume == nil && p.Mute == nil && p.CurrentTime == nil
}

// Fields returns the set fields keyed by attribute name.
func (p Partial) Fields() map[Field]any {
	omitted := omitnilpointers.OmitNilPointers(map[string]any{
		string(FieldPlay):        p.Play,
		string(FieldSeek):        p.Seek,
		string(FieldVolume):      p.Volume,
		string(FieldMute):        p.Mute,
		string(FieldCurrentTime): p.CurrentTime,
	})

	fields := make(map[Field]any, len(omitted))
	for k, v := range omitted {
		fields[Field(k)] = v
	}

	return fields
}

func (p Partial) Validate() error {
	if p.Volume != nil && (math.IsNaN(*p.Volume) || *p.Volume < 0 || *p.Volume > 1) {
		return fmt.Errorf("%w: volume %v out of [0,1]", ErrInvalidAttributes, *p.Volume)
	}
	if p.Seek != nil && (math.IsNaN(*p.Seek) || *p.Seek < 0) {
		return fmt.Errorf("%w: seek %v is negative", ErrInvalidAttributes, *p.Seek)
	}
	if p.CurrentTime != nil && (math.IsNaN(*p.CurrentTime) || *p.CurrentTime < 0) {
		return fmt.Errorf("%w: currentTime %v is negative", ErrInvalidAttributes, *p.CurrentTime)
	}

	return nil
}

// Rounded returns p with seek and currentTime rounded to whole seconds.
func (p Partial) Rounded() Partial {
	if p.Seek != nil {
		p.Seek = Float(roundSeconds(*p.Seek))
	}
	if p.CurrentTime != nil {
		p.CurrentTime = Float(roundSeconds(*p.CurrentTime))
	}

	return p
}

// PartialFromState returns a Partial setting every field of s.
func PartialFromState(s State) Partial {
	return Partial{
		Play:        &s.Play,
		Seek:        &s.Seek,
		Volume:      &s.Volume,
		Mute:        &s.Mute,
		CurrentTime: &s.CurrentTime,
	}
}

func Bool(v bool) *bool { return &v }

func Float(v float64) *float64 { return &v }

// roundSeconds rounds half away from zero and clamps negatives to zero.
func roundSeconds(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	return math.Round(v)
}
