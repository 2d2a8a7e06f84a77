package wm

type Mode int

const (
	ModeEqual Mode = iota
	ModeStack
	ModeMax
)

func (m Mode) String() string {
	switch m {
	case ModeEqual:
		return "equal"
	case ModeStack:
		return "stack"
	case ModeMax:
		return "max"
	default:
		return ""
	}
}

func ParseMode(s string) (Mode, bool) {
	switch s {
	case "equal":
		return ModeEqual, true
	case "stack":
		return ModeStack, true
	case "max":
		return ModeMax, true
	default:
		return 0, false
	}
}
