package mediasync

import "sync"

// SelfMute is a local-only mute flag layered on top of the shared mute
// attribute. It is never replicated.
type SelfMute struct {
	mu       sync.Mutex
	enabled  bool
	onChange func(enabled bool)
}

// NewSelfMute returns a cleared flag. onChange, if not nil, runs after every
// transition outside the flag's lock.
func NewSelfMute(onChange func(enabled bool)) *SelfMute {
	return &SelfMute{onChange: onChange}
}

func (s *SelfMute) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

func (s *SelfMute) Set(enabled bool) {
	s.mu.Lock()
	changed := s.enabled != enabled
	s.enabled = enabled
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.onChange(enabled)
	}
}

// Clear is the explicit local unmute action.
func (s *SelfMute) Clear() {
	s.Set(false)
}

// EffectiveMuted is the mute state presented to the device.
func EffectiveMuted(shared, self bool) bool {
	return shared || self
}
