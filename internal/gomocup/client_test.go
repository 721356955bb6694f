package gomocup

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptedClient returns a client whose stdout is pre-scripted and whose
// stdin writes are captured, without spawning a process.
func scriptedClient(output string) (*Client, *bytes.Buffer) {
	in := &bytes.Buffer{}
	c := &Client{
		ID:  0,
		in:  in,
		out: bufio.NewReader(strings.NewReader(output)),
		log: zerolog.Nop(),
	}
	return c, in
}

func TestSend_BoardRoundTrip(t *testing.T) {
	moves := []Coord{{7, 7}, {8, 8}, {6, 9}}
	c, in := scriptedClient("10,11\r\n")

	resp, err := c.Send(Board{Moves: moves})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if resp.Kind != KindMove || resp.Move != (Coord{X: 10, Y: 11}) {
		t.Errorf("Send = %+v, want move 10,11", resp)
	}

	want := "BOARD\r\n7,7,1\r\n8,8,2\r\n6,9,1\r\nDONE\r\n"
	if in.String() != want {
		t.Errorf("wrote %q, want %q", in.String(), want)
	}
}

func TestSend_SkipsNonTerminalLines(t *testing.T) {
	c, _ := scriptedClient("MESSAGE thinking hard\r\nDEBUG depth 9\r\n4,5\r\n")

	resp, err := c.Send(Board{Moves: []Coord{{7, 7}}})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if resp.Kind != KindMove || resp.Move != (Coord{X: 4, Y: 5}) {
		t.Errorf("Send = %+v, want move 4,5", resp)
	}
}

func TestSend_EngineError(t *testing.T) {
	c, _ := scriptedClient("ERROR board is full\r\n")

	_, err := c.Send(Board{Moves: []Coord{{7, 7}}})
	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("Send error = %v (%T), want *EngineError", err, err)
	}
	if engErr.Msg != "board is full" {
		t.Errorf("EngineError.Msg = %q, want %q", engErr.Msg, "board is full")
	}
}

func TestSend_UnknownCommand(t *testing.T) {
	c, _ := scriptedClient("UNKNOWN yxshowforbid\r\n")

	_, err := c.Send(ShowForbidden{})
	var unkErr *UnknownCommandError
	if !errors.As(err, &unkErr) {
		t.Fatalf("Send error = %v (%T), want *UnknownCommandError", err, err)
	}
}

func TestSend_EmptyLineIsTerminal(t *testing.T) {
	c, _ := scriptedClient("\r\n7,7\r\n")

	resp, err := c.Send(Begin{})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if resp.Kind != KindNone {
		t.Errorf("Send = %+v, want an empty terminal response", resp)
	}
}

func TestSend_NoResponseCommandsReturnImmediately(t *testing.T) {
	// No output scripted: a read attempt would fail with EOF.
	c, in := scriptedClient("")

	for _, cmd := range []Command{Info{Key: "rule", Value: "2"}, Stop{}, HashClear{}, YixinBoard{Moves: []Coord{{7, 7}}}, End{}} {
		resp, err := c.Send(cmd)
		if err != nil {
			t.Fatalf("Send(%T) error: %v", cmd, err)
		}
		if resp.Kind != KindNone {
			t.Errorf("Send(%T) = %+v, want KindNone", cmd, resp)
		}
	}
	if !strings.HasSuffix(in.String(), "END\r\n") {
		t.Errorf("END command not written, got %q", in.String())
	}
}

func TestSend_ReadFailure(t *testing.T) {
	c, _ := scriptedClient("") // EOF on first read

	_, err := c.Send(Board{Moves: []Coord{{7, 7}}})
	if err == nil {
		t.Fatal("Send succeeded, want read error")
	}
}

func TestSend_ParseFailureIsDistinctFromEngineError(t *testing.T) {
	c, _ := scriptedClient("7,notanumber\r\n")

	_, err := c.Send(Board{Moves: []Coord{{7, 7}}})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Send error = %v (%T), want *ParseError", err, err)
	}
	var engErr *EngineError
	if errors.As(err, &engErr) {
		t.Error("parse failure must not be an *EngineError")
	}
}

func TestHandshake_Wire(t *testing.T) {
	c, in := scriptedClient("OK\r\n")

	if err := c.handshake(5 * time.Second); err != nil {
		t.Fatalf("handshake error: %v", err)
	}
	want := strings.Join([]string{
		"START 15",
		"INFO timeout_turn 5000",
		"INFO thread_num 1",
		"INFO rule 2",
	}, "\r\n") + "\r\n"
	if in.String() != want {
		t.Errorf("handshake wrote %q, want %q", in.String(), want)
	}
}

func TestHandshake_RejectsNonOK(t *testing.T) {
	c, _ := scriptedClient("7,7\r\n")

	err := c.handshake(0)
	var unexpected *UnexpectedResponseError
	if !errors.As(err, &unexpected) {
		t.Fatalf("handshake error = %v (%T), want *UnexpectedResponseError", err, err)
	}
}

func TestSend_MoveRangeThroughClient(t *testing.T) {
	for x := 0; x < DefaultBoardSize; x++ {
		for y := 0; y < DefaultBoardSize; y++ {
			c, _ := scriptedClient(fmt.Sprintf("%d,%d\r\n", x, y))
			resp, err := c.Send(Board{Moves: []Coord{{7, 7}}})
			if err != nil {
				t.Fatalf("Send error at %d,%d: %v", x, y, err)
			}
			if resp.Move != (Coord{X: uint8(x), Y: uint8(y)}) {
				t.Fatalf("Send = %v, want %d,%d", resp.Move, x, y)
			}
		}
	}
}
