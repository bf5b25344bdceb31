package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/focusnest/internal/model"
)

type Type string

const (
	TypeFocus         Type = "focus"
	TypeBreak         Type = "break"
	TypeStart         Type = "start"
	TypePause         Type = "pause"
	TypeReset         Type = "reset"
	TypeSwitch        Type = "switch"
	TypeStats         Type = "stats"
	TypeResetProgress Type = "reset-progress"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MinutesArgs carries an already clamped duration.
type MinutesArgs struct {
	Minutes int
}

type Command struct {
	Type    Type
	Raw     string
	Minutes *MinutesArgs
}

// Names lists every palette command, in the order shown to users.
func Names() []string {
	return []string{
		string(TypeFocus) + " <min>",
		string(TypeBreak) + " <min>",
		string(TypeStart),
		string(TypePause),
		string(TypeReset),
		string(TypeSwitch),
		string(TypeStats),
		string(TypeResetProgress),
	}
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeFocus:
		return parseMinutes(input, TypeFocus, args, model.MinFocusMinutes, model.MaxFocusMinutes)
	case TypeBreak:
		return parseMinutes(input, TypeBreak, args, model.MinBreakMinutes, model.MaxBreakMinutes)
	case TypeStart, TypePause, TypeReset, TypeSwitch, TypeStats, TypeResetProgress:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// Out of range or non-numeric values are clamped, not rejected; only a
// missing value is an error.
func parseMinutes(raw string, typ Type, args []string, min, max int) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires minutes", typ)}
	}
	return Command{Type: typ, Raw: raw, Minutes: &MinutesArgs{Minutes: model.ParseMinutes(args[0], min, max)}}, nil
}
