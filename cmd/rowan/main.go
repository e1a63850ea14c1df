// Command rowan normalizes Bible module verse text from its source markup
// dialect (OSIS, GBF, or ThML) into the canonical backslash-marker line form.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/RowanText/core/dialect"
	"github.com/FocuswithJustin/RowanText/core/hash"
	"github.com/FocuswithJustin/RowanText/core/normalize"
	"github.com/FocuswithJustin/RowanText/core/usfm"
	"github.com/FocuswithJustin/RowanText/internal/detect"
	"github.com/FocuswithJustin/RowanText/internal/imp"
	"github.com/FocuswithJustin/RowanText/internal/logging"
	"github.com/FocuswithJustin/RowanText/internal/report"
	"github.com/FocuswithJustin/RowanText/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for rowan.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log format"`

	Detect    DetectCmd    `cmd:"" help:"Detect the markup dialect of a verse dump"`
	Normalize NormalizeCmd `cmd:"" help:"Normalize a verse dump into canonical lines"`
	Markers   MarkersGroup `cmd:"" help:"Marker catalog operations"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// MarkersGroup contains marker catalog operations.
type MarkersGroup struct {
	List  MarkersListCmd  `cmd:"" help:"List the marker catalog"`
	Check MarkersCheckCmd `cmd:"" help:"Check markers against the catalog"`
}

// DetectCmd sniffs the dialect of an IMP dump.
type DetectCmd struct {
	Path    string `arg:"" help:"Path to IMP dump (.imp or .imp.xz)" type:"existingfile"`
	Samples int    `default:"50" help:"Number of verses to sample"`
}

func (c *DetectCmd) Run() error {
	f, err := imp.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var samples []string
	for i := 0; i < c.Samples; i++ {
		u, err := f.Next()
		if err != nil {
			break
		}
		samples = append(samples, u.Text)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no verses found in %s", c.Path)
	}

	d, err := detect.DetectVerses(samples)
	if err != nil {
		return fmt.Errorf("detect %s: %w", c.Path, err)
	}
	fmt.Println(d)
	return nil
}

// NormalizeCmd converts a verse dump into canonical book line sequences.
type NormalizeCmd struct {
	In      string `name:"in" required:"" help:"Input IMP dump (.imp or .imp.xz)" type:"existingfile"`
	Dialect string `default:"auto" enum:"auto,osis,gbf,thml" help:"Source dialect"`
	Module  string `default:"MOD" help:"Module name for diagnostics"`
	DB      string `name:"db" help:"Write line sequences to this SQLite database"`
	Report  string `help:"Write a JSON diagnostics report to this file"`
	Markers string `help:"Marker catalog YAML (defaults to the embedded catalog)"`
	Quiet   bool   `short:"q" help:"Suppress the per-book summary"`
}

func (c *NormalizeCmd) Run() error {
	ctx := context.Background()
	log := logging.Logger()

	registry, err := c.loadMarkers()
	if err != nil {
		return err
	}
	d, err := c.resolveDialect()
	if err != nil {
		return err
	}

	filter, err := normalize.FilterFor(d, log)
	if err != nil {
		return err
	}
	collector := report.NewCollector(c.Module, d)
	pipe := normalize.NewPipeline(c.Module, filter, registry, collector, log)

	f, err := imp.Open(c.In)
	if err != nil {
		return err
	}
	defer f.Close()

	books, failed, err := pipe.Run(ctx, f.Reader)
	if err != nil {
		return err
	}
	verses := 0
	for _, b := range books {
		for _, l := range b.Lines {
			if l.Marker == "v" {
				verses++
			}
		}
	}
	collector.CountBooks(len(books))
	collector.CountVerses(verses)

	if c.DB != "" {
		st, err := store.Open(ctx, c.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		for _, b := range books {
			if err := st.SaveBook(ctx, c.Module, b); err != nil {
				return err
			}
		}
	}

	if c.Report != "" {
		out, err := os.Create(c.Report)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := collector.WriteJSON(out); err != nil {
			return err
		}
	}

	if !c.Quiet {
		fmt.Printf("%s: %s dialect, %d book(s), %d failed verse(s)\n", c.Module, d, len(books), len(failed))
		for _, b := range books {
			fmt.Printf("  %-8s %6d lines  %s\n", b.ID, len(b.Lines), hash.BookSum(b))
		}
	}
	return nil
}

func (c *NormalizeCmd) loadMarkers() (*usfm.Registry, error) {
	if c.Markers == "" {
		return usfm.Default(), nil
	}
	return usfm.Load(c.Markers)
}

func (c *NormalizeCmd) resolveDialect() (dialect.Dialect, error) {
	switch c.Dialect {
	case "osis":
		return dialect.OSIS, nil
	case "gbf":
		return dialect.GBF, nil
	case "thml":
		return dialect.ThML, nil
	}

	f, err := imp.Open(c.In)
	if err != nil {
		return "", err
	}
	defer f.Close()
	var samples []string
	for i := 0; i < 50; i++ {
		u, err := f.Next()
		if err != nil {
			break
		}
		samples = append(samples, u.Text)
	}
	d, err := detect.DetectVerses(samples)
	if err != nil {
		return "", fmt.Errorf("cannot auto-detect dialect of %s (use --dialect): %w", c.In, err)
	}
	logging.Info("dialect detected", "dialect", string(d), "input", c.In)
	return d, nil
}

// MarkersListCmd prints the marker catalog grouped by class.
type MarkersListCmd struct {
	Catalog string `help:"Marker catalog YAML (defaults to the embedded catalog)"`
}

func (c *MarkersListCmd) Run() error {
	registry, err := loadRegistry(c.Catalog)
	if err != nil {
		return err
	}
	for _, m := range registry.Markers() {
		fmt.Printf("%-8s %s\n", m, markerClass(registry, m))
	}
	return nil
}

// MarkersCheckCmd validates markers against the catalog.
type MarkersCheckCmd struct {
	Catalog string   `help:"Marker catalog YAML (defaults to the embedded catalog)"`
	Names   []string `arg:"" help:"Marker names to check (with or without backslash)"`
}

func (c *MarkersCheckCmd) Run() error {
	registry, err := loadRegistry(c.Catalog)
	if err != nil {
		return err
	}
	unknown := 0
	names := append([]string(nil), c.Names...)
	sort.Strings(names)
	for _, m := range names {
		if registry.IsKnownMarker(m) {
			fmt.Printf("%-8s %s\n", m, markerClass(registry, m))
		} else {
			fmt.Printf("%-8s unknown\n", m)
			unknown++
		}
	}
	if unknown > 0 {
		return fmt.Errorf("%d unknown marker(s)", unknown)
	}
	return nil
}

func loadRegistry(path string) (*usfm.Registry, error) {
	if path == "" {
		return usfm.Default(), nil
	}
	return usfm.Load(path)
}

func markerClass(r *usfm.Registry, m string) string {
	switch {
	case r.IsParagraphMarker(m):
		return "paragraph"
	case r.IsInternalMarker(m):
		return "internal"
	case r.IsCharacterMarker(m):
		return "character"
	case r.IsNewlineMarker(m):
		return "newline"
	default:
		return "unknown"
	}
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("rowan %s (sqlite driver: %s)\n", version, store.DriverType())
	return nil
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("rowan"),
		kong.Description("RowanText - verse markup normalization"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
