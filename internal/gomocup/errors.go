package gomocup

import "fmt"

// EngineError is a failure the engine itself declared with an ERROR line.
// It is terminal for the exchange and never retried at this layer.
type EngineError struct {
	Msg string
}

func (e *EngineError) Error() string { return "engine error: " + e.Msg }

// UnknownCommandError is the engine's UNKNOWN reply to a command it does not
// recognize.
type UnknownCommandError struct {
	Msg string
}

func (e *UnknownCommandError) Error() string { return "engine unknown command: " + e.Msg }

// ParseError is a response line this client could not classify.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse response %q: %s", e.Line, e.Reason) }

// UnexpectedResponseError is a syntactically valid response of a kind the
// caller was not expecting, e.g. an acknowledgement where a move was due.
type UnexpectedResponseError struct {
	Got Response
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected %s response from engine", e.Got.Kind)
}
