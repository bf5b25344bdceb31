package model

type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Next returns the phase that follows p in a pomodoro cycle.
func (p Phase) Next() Phase {
	if p == PhaseBreak {
		return PhaseFocus
	}
	return PhaseBreak
}

func (p Phase) Label() string {
	if p == PhaseBreak {
		return "Break"
	}
	return "Focus"
}
