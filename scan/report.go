package scan

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Lafeng/weakdh/kex"
	"github.com/fatih/color"
)

const DISCLAIMER = `WARNING: This tool tests a limited number of configurations and
therefore potentially fails to detect some weak configurations.
Moreover, the server possibly blocks connections before the scan
completes.`

// Printer writes findings as report lines. It implements kex.Sink.
type Printer struct {
	w       io.Writer
	symbols map[string]*color.Color
	counts  map[kex.FindingKind]int
}

// NewPrinter colours the bracketed symbol according to mode: "always",
// "never", or "auto" which colours only a terminal stdout.
func NewPrinter(w io.Writer, mode string) *Printer {
	p := &Printer{
		w: w,
		symbols: map[string]*color.Color{
			"!": color.New(color.FgRed, color.Bold),
			"-": color.New(color.FgRed),
			"*": color.New(color.FgYellow),
			"+": color.New(color.FgGreen),
		},
		counts: make(map[kex.FindingKind]int),
	}
	for _, c := range p.symbols {
		switch strings.ToLower(mode) {
		case "always":
			c.EnableColor()
		case "never":
			c.DisableColor()
		default:
			if w != io.Writer(os.Stdout) {
				c.DisableColor()
			}
		}
	}
	return p
}

func (p *Printer) Report(f kex.Finding) {
	p.counts[f.Kind]++
	sym := f.Symbol()
	if sym == "" {
		fmt.Fprintln(p.w, f.Body())
		return
	}
	if c, y := p.symbols[sym]; y {
		sym = c.Sprint(sym)
	}
	fmt.Fprintf(p.w, "[%s] %s\n", sym, f.Body())
}

// FileError reports a transcript that could not be read.
func (p *Printer) FileError(file string, err error) {
	p.counts[kex.Diagnostic]++
	fmt.Fprintf(p.w, "Error: Cannot read %s: %v\n", file, err)
}

// Disclaimer ends the report.
func (p *Printer) Disclaimer() {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, DISCLAIMER)
}

// Count returns how many findings of kind were printed.
func (p *Printer) Count(kind kex.FindingKind) int {
	return p.counts[kind]
}
