package gomocup

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBoardSize is declared to the engine during the handshake.
const DefaultBoardSize = 15

// killGrace bounds how long Close waits for the engine to exit after END
// before killing it.
const killGrace = 3 * time.Second

// Client drives one engine subprocess over its stdin/stdout pipes. One
// client per worker; it is not safe for concurrent use. Pipe I/O failures
// are fatal to the client instance.
type Client struct {
	ID int

	cmd *exec.Cmd
	in  io.Writer
	out *bufio.Reader
	log zerolog.Logger
}

// Open spawns the engine subprocess and performs the fixed handshake:
// declare the board size, set the per-move time budget, a single search
// thread, and the renju rule variant. The command string is split on
// whitespace; the first field is the executable.
func Open(id int, command string, moveTime time.Duration, logger zerolog.Logger) (*Client, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty engine command")
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn engine %q: %w", parts[0], err)
	}

	c := &Client{
		ID:  id,
		cmd: cmd,
		in:  stdin,
		out: bufio.NewReader(stdout),
		log: logger.With().Int("engine_id", id).Logger(),
	}
	if err := c.handshake(moveTime); err != nil {
		_ = c.terminate()
		return nil, fmt.Errorf("engine handshake: %w", err)
	}
	c.log.Info().Str("command", command).Msg("engine started")
	return c, nil
}

func (c *Client) handshake(moveTime time.Duration) error {
	resp, err := c.Send(Start{Size: DefaultBoardSize})
	if err != nil {
		return err
	}
	if resp.Kind != KindOK {
		return &UnexpectedResponseError{Got: resp}
	}
	for _, cmd := range []Command{
		Info{Key: "timeout_turn", Value: strconv.FormatInt(moveTime.Milliseconds(), 10)},
		Info{Key: "thread_num", Value: "1"},
		Info{Key: "rule", Value: "2"},
	} {
		if _, err := c.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Send writes one command and, unless the command is a no-response one,
// blocks reading output lines until a terminal response is parsed.
// Non-terminal debug/message lines are logged and skipped without ending the
// wait. Engine-declared errors and unrecognized commands surface immediately
// as errors; retry policy belongs to the caller.
func (c *Client) Send(cmd Command) (Response, error) {
	payload := cmd.wire()
	if _, err := io.WriteString(c.in, payload); err != nil {
		return Response{}, fmt.Errorf("write command: %w", err)
	}
	c.log.Trace().Str("command", strings.TrimRight(payload, "\r\n")).Msg("sent")

	if !cmd.expectsResponse() {
		return Response{Kind: KindNone}, nil
	}

	for {
		line, err := c.out.ReadString('\n')
		if err != nil {
			return Response{}, fmt.Errorf("read response: %w", err)
		}
		resp, err := ParseResponse(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return Response{}, err
		}
		switch resp.Kind {
		case KindDebug:
			c.log.Debug().Str("engine", resp.Text).Msg("engine debug")
		case KindMessage:
			c.log.Trace().Str("engine", resp.Text).Msg("engine message")
		case KindError:
			c.log.Error().Str("engine", resp.Text).Msg("engine error")
			return Response{}, &EngineError{Msg: resp.Text}
		case KindUnknown:
			c.log.Warn().Str("engine", resp.Text).Msg("engine rejected command")
			return Response{}, &UnknownCommandError{Msg: resp.Text}
		default:
			return resp, nil
		}
	}
}

// Close asks the engine to quit with END, then reaps the process with a
// bounded wait before a forced kill. It never blocks indefinitely on an
// unresponsive engine.
func (c *Client) Close() error {
	_, sendErr := c.Send(End{})
	if closer, ok := c.in.(io.Closer); ok {
		_ = closer.Close()
	}
	termErr := c.terminate()
	if sendErr != nil {
		return sendErr
	}
	return termErr
}

func (c *Client) terminate() error {
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(killGrace):
		c.log.Warn().Msg("engine did not exit, killing")
		if err := c.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill engine: %w", err)
		}
		<-done
		return nil
	}
}
