// Package report persists and renders per-rating move-matching results:
// the checkpoint/report CSV, rating-bracket accuracy tables, and the rating
// distribution histogram.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"

	"github.com/renjulab/movematch/internal/gamedb"
	"github.com/renjulab/movematch/internal/match"
)

// WriteFile persists counters as CSV, one row per rating in ascending
// order. The write goes through a temp file and a rename, so a crash
// mid-checkpoint never truncates the previous one.
func WriteFile(path string, rows []match.RatingCount) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"rating", "matched", "total"}); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(row.Rating, 10),
			strconv.FormatUint(uint64(row.Matched), 10),
			strconv.FormatUint(uint64(row.Total), 10),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile loads a checkpoint/report CSV. A header row is tolerated.
func ReadFile(path string) ([]match.RatingCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 3

	var rows []match.RatingCount
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read checkpoint: %w", err)
		}
		rating, rerr := strconv.ParseUint(rec[0], 10, 64)
		if rerr != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, fmt.Errorf("checkpoint rating %q: %v", rec[0], rerr)
		}
		first = false
		matched, err := strconv.ParseUint(rec[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("checkpoint matched %q: %v", rec[1], err)
		}
		total, err := strconv.ParseUint(rec[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("checkpoint total %q: %v", rec[2], err)
		}
		rows = append(rows, match.RatingCount{
			Rating:  rating,
			Matched: uint32(matched),
			Total:   uint32(total),
		})
	}
	return rows, nil
}

// BracketWidth groups ratings into 100-point accuracy brackets.
const BracketWidth = 100

// Bracket aggregates counters over one rating bracket.
type Bracket struct {
	Rating  uint64 // lower bound of the bracket
	Matched uint64
	Total   uint64
}

// Accuracy is the bracket's move-matching percentage.
func (b Bracket) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Matched) / float64(b.Total) * 100
}

// Brackets groups rows into 100-point brackets, sorted ascending. Brackets
// with no evaluated positions are dropped.
func Brackets(rows []match.RatingCount) []Bracket {
	byLower := map[uint64]*Bracket{}
	for _, row := range rows {
		if row.Total == 0 {
			continue
		}
		lower := row.Rating / BracketWidth * BracketWidth
		b, ok := byLower[lower]
		if !ok {
			b = &Bracket{Rating: lower}
			byLower[lower] = b
		}
		b.Matched += uint64(row.Matched)
		b.Total += uint64(row.Total)
	}
	out := make([]Bracket, 0, len(byLower))
	for _, b := range byLower {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out
}

// WriteSummary renders bracket accuracy as an ASCII table.
func WriteSummary(w io.Writer, name string, rows []match.RatingCount) {
	fmt.Fprintf(w, "%s\n", name)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rating", "Matched", "Total", "Accuracy"})
	for _, b := range Brackets(rows) {
		table.Append([]string{
			fmt.Sprintf("%d-%d", b.Rating, b.Rating+BracketWidth-1),
			strconv.FormatUint(b.Matched, 10),
			strconv.FormatUint(b.Total, 10),
			fmt.Sprintf("%.1f%%", b.Accuracy()),
		})
	}
	table.Render()
}

// RatingDistribution prints an ASCII histogram of participant ratings, two
// per game.
func RatingDistribution(w io.Writer, games []gamedb.Game) error {
	if len(games) == 0 {
		return nil
	}
	ratings := make([]float64, 0, 2*len(games))
	for _, g := range games {
		ratings = append(ratings, float64(g.BlackRating), float64(g.WhiteRating))
	}
	hist := histogram.Hist(15, ratings)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
