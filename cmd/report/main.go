package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/renjulab/movematch/internal/report"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <results.csv> [<results.csv> ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Renders rating-bracket accuracy tables for saved move-matching results.\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	for _, path := range flag.Args() {
		rows, err := report.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			os.Exit(1)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		report.WriteSummary(os.Stdout, name, rows)
		fmt.Println()
	}
}
