package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Focus         func(MinutesArgs) (Result, error)
	Break         func(MinutesArgs) (Result, error)
	Start         func() (Result, error)
	Pause         func() (Result, error)
	Reset         func() (Result, error)
	Switch        func() (Result, error)
	Stats         func() (Result, error)
	ResetProgress func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeFocus:
		if handlers.Focus == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Focus(*cmd.Minutes)
	case TypeBreak:
		if handlers.Break == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Break(*cmd.Minutes)
	case TypeStart:
		return call(cmd.Type, handlers.Start)
	case TypePause:
		return call(cmd.Type, handlers.Pause)
	case TypeReset:
		return call(cmd.Type, handlers.Reset)
	case TypeSwitch:
		return call(cmd.Type, handlers.Switch)
	case TypeStats:
		return call(cmd.Type, handlers.Stats)
	case TypeResetProgress:
		return call(cmd.Type, handlers.ResetProgress)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call(t Type, fn func() (Result, error)) (Result, error) {
	if fn == nil {
		return Result{}, missing(t)
	}
	return fn()
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
