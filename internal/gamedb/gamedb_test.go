package gamedb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/renjulab/movematch/internal/gomocup"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		want    gomocup.Coord
		wantErr bool
	}{
		{"a1", gomocup.Coord{X: 0, Y: 0}, false},
		{"h8", gomocup.Coord{X: 7, Y: 7}, false},
		{"o15", gomocup.Coord{X: 14, Y: 14}, false},
		{"a16", gomocup.Coord{}, true},
		{"p1", gomocup.Coord{}, true},
		{"h", gomocup.Coord{}, true},
		{"h0", gomocup.Coord{}, true},
		{"hx", gomocup.Coord{}, true},
		{"h888", gomocup.Coord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMove(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMove(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMove(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatMove_RoundTrip(t *testing.T) {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			c := gomocup.Coord{X: uint8(x), Y: uint8(y)}
			got, err := ParseMove(FormatMove(c))
			if err != nil {
				t.Fatalf("round trip %v: %v", c, err)
			}
			if got != c {
				t.Fatalf("round trip %v -> %q -> %v", c, FormatMove(c), got)
			}
		}
	}
}

func TestRead(t *testing.T) {
	input := strings.Join([]string{
		"black_rating,white_rating,moves",
		`2134,1987,h8 i9 g7 h9 i7`,
		`1650,2210,h8 g9`,
	}, "\n")

	games, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("Read returned %d games, want 2", len(games))
	}
	g := games[0]
	if g.BlackRating != 2134 || g.WhiteRating != 1987 {
		t.Errorf("game 0 ratings = %d/%d, want 2134/1987", g.BlackRating, g.WhiteRating)
	}
	if len(g.Moves) != 5 {
		t.Fatalf("game 0 has %d moves, want 5", len(g.Moves))
	}
	if g.Moves[0] != (gomocup.Coord{X: 7, Y: 7}) {
		t.Errorf("game 0 first move = %v, want h8", g.Moves[0])
	}
	if games[1].Moves[1] != (gomocup.Coord{X: 6, Y: 8}) {
		t.Errorf("game 1 second move = %v, want g9", games[1].Moves[1])
	}
}

func TestRead_NoHeader(t *testing.T) {
	games, err := Read(strings.NewReader("1800,1900,h8 i9\n"))
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("Read returned %d games, want 1", len(games))
	}
}

func TestRead_BadMove(t *testing.T) {
	_, err := Read(strings.NewReader("1800,1900,h8 z9\n"))
	if err == nil {
		t.Fatal("Read succeeded on out-of-range move, want error")
	}
}

func TestRead_BadRating(t *testing.T) {
	_, err := Read(strings.NewReader("1800,xx,h8\nnope,1900,h8\n"))
	if err == nil {
		t.Fatal("Read succeeded on malformed rating, want error")
	}
}

func TestLoad_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.csv.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte("2000,2100,h8 i9 g7\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	games, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(games) != 1 || len(games[0].Moves) != 3 {
		t.Fatalf("Load = %+v, want one game with 3 moves", games)
	}
}
