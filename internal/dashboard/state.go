package dashboard

// State is the step a render cycle is in.
type State int

const (
	Idle State = iota
	Collecting
	Binding
	Drawing
	Displaying
	FallbackPersist
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Binding:
		return "binding"
	case Drawing:
		return "drawing"
	case Displaying:
		return "displaying"
	case FallbackPersist:
		return "fallback"
	default:
		return "unknown"
	}
}
