package gomocup

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies one engine response line.
type Kind uint8

const (
	// KindNone is an empty response: either a no-response command was sent,
	// or the engine emitted a blank line.
	KindNone Kind = iota
	// KindOK is the acknowledgement for START and similar commands.
	KindOK
	// KindMove is the engine's committed move: a bare x,y line, or a
	// SUGGEST advisory which this client folds into the same kind.
	KindMove
	// KindDebug and KindMessage are non-terminal informational lines.
	KindDebug
	KindMessage
	// KindError is an engine-declared failure; the rest of the line is the
	// message.
	KindError
	// KindUnknown is the engine's reply to a command it does not recognize.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindOK:
		return "ok"
	case KindMove:
		return "move"
	case KindDebug:
		return "debug"
	case KindMessage:
		return "message"
	case KindError:
		return "error"
	case KindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Response is one classified engine output line.
type Response struct {
	Kind Kind
	Move Coord  // valid when Kind == KindMove
	Text string // remainder of the line for debug/message/error/unknown
}

// ParseResponse classifies a single line of engine output, without the line
// terminator. Dispatch is on the first whitespace-delimited token, matched
// case-insensitively; a bare coordinate pair with no recognized keyword is a
// committed move. A coordinate pair that fails to parse is a *ParseError,
// which is distinct from an engine-declared error.
func ParseResponse(line string) (Response, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Response{Kind: KindNone}, nil
	}
	rest := strings.Join(fields[1:], " ")
	switch strings.ToLower(fields[0]) {
	case "ok":
		return Response{Kind: KindOK}, nil
	case "suggest":
		if len(fields) < 2 {
			return Response{}, &ParseError{Line: line, Reason: "suggest without coordinate"}
		}
		mv, err := parseCoord(fields[1])
		if err != nil {
			return Response{}, &ParseError{Line: line, Reason: err.Error()}
		}
		return Response{Kind: KindMove, Move: mv}, nil
	case "debug":
		return Response{Kind: KindDebug, Text: rest}, nil
	case "message":
		return Response{Kind: KindMessage, Text: rest}, nil
	case "error":
		return Response{Kind: KindError, Text: rest}, nil
	case "unknown":
		return Response{Kind: KindUnknown, Text: rest}, nil
	default:
		mv, err := parseCoord(fields[0])
		if err != nil {
			return Response{}, &ParseError{Line: line, Reason: err.Error()}
		}
		return Response{Kind: KindMove, Move: mv}, nil
	}
}

func parseCoord(s string) (Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("missing coordinate in %q", s)
	}
	x, err := strconv.ParseUint(xs, 10, 8)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q", xs)
	}
	y, err := strconv.ParseUint(ys, 10, 8)
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coordinate %q", ys)
	}
	return Coord{X: uint8(x), Y: uint8(y)}, nil
}
