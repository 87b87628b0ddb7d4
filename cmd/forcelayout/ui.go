package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
)

// table prints an aligned table with a dimmed header.
func table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	subtle.Fprintln(w, headerLine)
	subtle.Fprintln(w, sepLine)

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, line)
	}
}

func printMetrics(w io.Writer, names []string, values map[string]float64) {
	fmt.Fprintln(w, brand.Sprint("metrics"))
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, good.Sprintf("%.6g", values[name]))
	}
}
