package dsp

// Smoother is a plain exponential moving average. Smaller alpha means
// heavier smoothing.
type Smoother struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewSmoother constructs a Smoother with the supplied alpha clamped to [0,1].
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: clamp(alpha, 0, 1)}
}

// Step folds in a new observation and returns the smoothed value. The first
// observation initializes the state directly.
func (s *Smoother) Step(v float64) float64 {
	if !s.initialized {
		s.value = v
		s.initialized = true
		return v
	}
	s.value += s.alpha * (v - s.value)
	return s.value
}

// Value returns the current smoothed value without updating it.
func (s *Smoother) Value() float64 { return s.value }

// SetAlpha retunes the smoothing factor in place; mood changes retune the
// renderer's smoothers this way.
func (s *Smoother) SetAlpha(alpha float64) {
	s.alpha = clamp(alpha, 0, 1)
}
