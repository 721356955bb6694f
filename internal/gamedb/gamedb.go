// Package gamedb loads the prepared historical game list: two participant
// ratings and an ordered move sequence per game. Rating computation and
// extraction from raw tournament databases happen upstream; this package
// only reads the prepared CSV.
package gamedb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/renjulab/movematch/internal/gomocup"
)

// BoardSize is the renju board edge length.
const BoardSize = 15

// Game is one historical game. The first mover is black. Games are loaded
// once before workers start and never mutated afterward.
type Game struct {
	BlackRating uint64
	WhiteRating uint64
	Moves       []gomocup.Coord
}

// ParseMove converts a letter+row coordinate like "h8" to a 0-based Coord:
// the column letter maps a→0, the row number is 1-based.
func ParseMove(s string) (gomocup.Coord, error) {
	if len(s) < 2 || len(s) > 3 {
		return gomocup.Coord{}, fmt.Errorf("malformed move %q", s)
	}
	col := s[0]
	if col < 'a' || col >= 'a'+BoardSize {
		return gomocup.Coord{}, fmt.Errorf("column out of range in move %q", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 || row > BoardSize {
		return gomocup.Coord{}, fmt.Errorf("row out of range in move %q", s)
	}
	return gomocup.Coord{X: col - 'a', Y: uint8(row - 1)}, nil
}

// FormatMove is the inverse of ParseMove.
func FormatMove(c gomocup.Coord) string {
	return fmt.Sprintf("%c%d", 'a'+c.X, c.Y+1)
}

// Load reads a game list file. Files ending in .zst are decompressed
// transparently.
func Load(path string) ([]Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	games, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return games, nil
}

// Read parses a game list: CSV rows of black_rating,white_rating,moves where
// moves are space-separated letter+row coordinates. A header row is
// tolerated.
func Read(r io.Reader) ([]Game, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var games []Game
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read game list: %w", err)
		}
		black, berr := strconv.ParseUint(rec[0], 10, 64)
		if berr != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, fmt.Errorf("game %d: black rating %q: %v", len(games)+1, rec[0], berr)
		}
		first = false
		white, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("game %d: white rating %q: %v", len(games)+1, rec[1], err)
		}
		fields := strings.Fields(rec[2])
		moves := make([]gomocup.Coord, 0, len(fields))
		for _, field := range fields {
			mv, err := ParseMove(field)
			if err != nil {
				return nil, fmt.Errorf("game %d: %w", len(games)+1, err)
			}
			moves = append(moves, mv)
		}
		games = append(games, Game{BlackRating: black, WhiteRating: white, Moves: moves})
	}
	return games, nil
}
