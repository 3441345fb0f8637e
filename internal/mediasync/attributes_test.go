package mediasync

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialValidate(t *testing.T) {
	tests := []struct {
		name    string
		partial Partial
		wantErr bool
	}{
		{"empty", Partial{}, false},
		{"volume bounds", Partial{Volume: Float(0)}, false},
		{"volume upper bound", Partial{Volume: Float(1)}, false},
		{"volume above one", Partial{Volume: Float(1.01)}, true},
		{"volume below zero", Partial{Volume: Float(-0.1)}, true},
		{"volume nan", Partial{Volume: Float(math.NaN())}, true},
		{"negative seek", Partial{Seek: Float(-3)}, true},
		{"negative current time", Partial{CurrentTime: Float(-3)}, true},
		{"all fields", PartialFromState(DefaultState()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.partial.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAttributes)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPartialFields(t *testing.T) {
	p := Partial{Play: Bool(true), CurrentTime: Float(9)}

	assert.Equal(t, map[Field]any{FieldPlay: true, FieldCurrentTime: 9.0}, p.Fields())
	assert.False(t, p.IsEmpty())
	assert.True(t, Partial{}.IsEmpty())
}

func TestPartialRounded(t *testing.T) {
	seek := 2.5
	p := Partial{Seek: &seek, CurrentTime: Float(7.49), Volume: Float(0.33)}

	r := p.Rounded()

	assert.Equal(t, 3.0, *r.Seek)
	assert.Equal(t, 7.0, *r.CurrentTime)
	assert.Equal(t, 0.33, *r.Volume)
	assert.Equal(t, 2.5, seek, "the original partial is not modified")
}

func TestStateApply(t *testing.T) {
	s := DefaultState().Apply(Partial{Mute: Bool(true), Volume: Float(0.5)})

	assert.Equal(t, State{Volume: 0.5, Mute: true}, s)
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 3.0, roundSeconds(2.5))
	assert.Equal(t, 2.0, roundSeconds(2.49))
	assert.Equal(t, 0.0, roundSeconds(-4))
	assert.Equal(t, 0.0, roundSeconds(math.NaN()))
}

func TestParseIdentity(t *testing.T) {
	for _, s := range []string{"host", "guest", "listener"} {
		id, err := ParseIdentity(s)
		assert.NoError(t, err)
		assert.Equal(t, Identity(s), id)
	}

	_, err := ParseIdentity("admin")
	assert.Error(t, err)
	assert.True(t, IsAuthority(IdentityHost))
	assert.False(t, IsAuthority(IdentityListener))
	assert.False(t, IsAuthority(""))
}
