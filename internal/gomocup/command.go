// Package gomocup implements the manager side of the Gomocup line protocol
// with the Yixin extensions: CRLF-terminated ASCII commands written to an
// engine subprocess's stdin, responses classified line by line from its
// stdout.
package gomocup

import (
	"fmt"
	"strings"
)

// Coord is a 0-based board square: x is the column, y the row.
type Coord struct {
	X, Y uint8
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Command is one protocol command. Commands that the engine never answers
// report expectsResponse false; Send returns immediately for those.
type Command interface {
	// wire returns the full CRLF-terminated payload.
	wire() string
	expectsResponse() bool
}

// Start declares the board size. The engine acknowledges it with OK.
type Start struct {
	Size int
}

func (c Start) wire() string        { return fmt.Sprintf("START %d\r\n", c.Size) }
func (Start) expectsResponse() bool { return true }

// Begin asks the engine to open the game; it answers with its first move.
type Begin struct{}

func (Begin) wire() string          { return "BEGIN\r\n" }
func (Begin) expectsResponse() bool { return true }

// Turn plays one opponent move; the engine answers with its committed move.
type Turn struct {
	Move Coord
}

func (c Turn) wire() string        { return fmt.Sprintf("TURN %d,%d\r\n", c.Move.X, c.Move.Y) }
func (Turn) expectsResponse() bool { return true }

// Board replaces the whole position: one x,y,side line per ply, sides
// alternating starting at 1 for the first mover, terminated by DONE. The
// engine answers with its committed move for the side to play.
type Board struct {
	Moves []Coord
}

func (c Board) wire() string        { return boardWire("BOARD", c.Moves) }
func (Board) expectsResponse() bool { return true }

// YixinBoard is the Yixin alternate board-set: same block as Board but the
// engine does not answer it.
type YixinBoard struct {
	Moves []Coord
}

func (c YixinBoard) wire() string        { return boardWire("yxboard", c.Moves) }
func (YixinBoard) expectsResponse() bool { return false }

// Info sets one engine parameter. Never answered.
type Info struct {
	Key, Value string
}

func (c Info) wire() string        { return fmt.Sprintf("INFO %s %s\r\n", c.Key, c.Value) }
func (Info) expectsResponse() bool { return false }

// Stop interrupts the current search (Yixin extension). Never answered.
type Stop struct{}

func (Stop) wire() string          { return "yxstop\r\n" }
func (Stop) expectsResponse() bool { return false }

// HashClear clears the engine's transposition table (Yixin extension).
// Never answered.
type HashClear struct{}

func (HashClear) wire() string          { return "yxhashclear\r\n" }
func (HashClear) expectsResponse() bool { return false }

// ShowForbidden asks for the forbidden points under renju rules (Yixin
// extension).
type ShowForbidden struct{}

func (ShowForbidden) wire() string          { return "yxshowforbid\r\n" }
func (ShowForbidden) expectsResponse() bool { return true }

// End tells the engine to quit. Never answered.
type End struct{}

func (End) wire() string          { return "END\r\n" }
func (End) expectsResponse() bool { return false }

// Restart resets the engine to an empty board.
type Restart struct{}

func (Restart) wire() string          { return "RESTART\r\n" }
func (Restart) expectsResponse() bool { return true }

func boardWire(keyword string, moves []Coord) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString("\r\n")
	for i, m := range moves {
		side := 1
		if i%2 == 1 {
			side = 2
		}
		fmt.Fprintf(&b, "%d,%d,%d\r\n", m.X, m.Y, side)
	}
	b.WriteString("DONE\r\n")
	return b.String()
}
