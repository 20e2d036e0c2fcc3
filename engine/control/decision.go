package control

// Decision is the camera action chosen for one prediction.
type Decision int

const (
	// DecisionHold leaves the camera in place.
	DecisionHold Decision = iota
	// DecisionForward moves the camera toward -Z and counts toward the next extension.
	DecisionForward
	// DecisionBackward moves the camera toward +Z.
	DecisionBackward
)

func (d Decision) String() string {
	switch d {
	case DecisionForward:
		return "forward"
	case DecisionBackward:
		return "backward"
	default:
		return "hold"
	}
}

// Decide maps a prediction value to a Decision. Values equal to a threshold hold.
//
// Parameters:
//   - value: the prediction value
//   - low: values strictly below low move forward
//   - high: values strictly above high move backward
//
// Returns:
//   - Decision: the chosen action
func Decide(value, low, high float64) Decision {
	switch {
	case value < low:
		return DecisionForward
	case value > high:
		return DecisionBackward
	default:
		return DecisionHold
	}
}

// ExtensionCounter counts low-confidence samples and fires once every N of them.
type ExtensionCounter struct {
	every int
	count int
}

// NewExtensionCounter creates a counter firing every n samples (n < 1 is treated as 1).
func NewExtensionCounter(n int) *ExtensionCounter {
	return &ExtensionCounter{every: max(n, 1)}
}

// Observe counts one sample and reports whether an extension is due. The count resets when it fires.
func (c *ExtensionCounter) Observe() bool {
	c.count++
	if c.count >= c.every {
		c.count = 0
		return true
	}
	return false
}

// Count returns the samples counted since the last extension.
func (c *ExtensionCounter) Count() int {
	return c.count
}
