package client

// IteratorState is the position of an iterator in its lifecycle
type IteratorState int

const (
	// StateFresh means a page was just loaded and nothing read from it yet
	StateFresh IteratorState = iota
	// StateDraining means entries are being read from the current page
	StateDraining
	// StateRefilling means a follow-up page is being fetched
	StateRefilling
	// StateExhausted is terminal
	StateExhausted
)

// String returns the name of the state
func (s IteratorState) String() string {
	switch s {
	case StateFresh:
		return "FRESH"
	case StateDraining:
		return "DRAINING"
	case StateRefilling:
		return "REFILLING"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
