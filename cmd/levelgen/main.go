// levelgen builds and checks YAML level files.
//
// Usage:
//
//	go run ./cmd/levelgen <command> [-in path] [-out path]
//
// Commands: rows, specials, check
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fixedtick/levelsim/internal/bsp"
	"github.com/fixedtick/levelsim/internal/level"
	"github.com/fixedtick/levelsim/internal/trigger"
)

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// buildRows reads a room-row description and writes the level it describes.
func buildRows(in, out, _ string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	var spec level.RowSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("parse %s: %w", in, err)
	}
	l, err := level.BuildRow(spec, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	comment := fmt.Sprintf("# Generated by levelgen from %s. Do not edit by hand.", in)
	if err := level.Save(l, out, comment); err != nil {
		return err
	}
	fmt.Printf("  %s: %d sectors, %d lines, %d nodes -> %s\n", l.Name, len(l.Sectors), len(l.Lines), len(l.Nodes), out)
	return nil
}

// writeSpecials dumps the built-in line special table so it can be edited
// and loaded back through [sim] specials.
func writeSpecials(_, out, _ string) error {
	if err := os.WriteFile(out, trigger.DefaultTableSource(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("  built-in specials -> %s\n", out)
	return nil
}

// check loads a level, resolves every leaf's sector and lints its specials.
func check(in, _, specials string) error {
	l, err := level.Load(in, nil)
	if err != nil {
		return err
	}
	table, err := trigger.DefaultTable()
	if specials != "" {
		table, err = trigger.LoadTable(specials)
	}
	if err != nil {
		return err
	}

	problems := table.Lint(l)
	idx := bsp.New(l, nil)
	for leaf := range l.SubSectors {
		if idx.OwnerSector(leaf) < 0 {
			problems = append(problems, fmt.Sprintf("subsector %d: no owning sector", leaf))
		}
	}
	for _, th := range l.Things {
		if idx.SectorAt(th.X, th.Y) < 0 {
			problems = append(problems, fmt.Sprintf("%s at (%d,%d): outside every sector", th.Kind, th.X.Int(), th.Y.Int()))
		}
	}

	fmt.Printf("  %s: %d sectors, %d lines, %d subsectors, %d things\n",
		l.Name, len(l.Sectors), len(l.Lines), len(l.SubSectors), len(l.Things))
	for _, p := range problems {
		fmt.Printf("  ! %s\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %d problems", in, len(problems))
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/levelgen <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  rows      build a level from a room-row description (-in rows.yaml -out level.yaml)")
	fmt.Println("  specials  write the built-in line special table (-out specials.yaml)")
	fmt.Println("  check     validate a level file (-in level.yaml [-specials specials.yaml])")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -in        input file")
	fmt.Println("  -out       output file")
	fmt.Println("  -specials  line special table used by check")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	in := fs.String("in", "data/levels/demo.rows.yaml", "input file")
	out := fs.String("out", "data/levels/demo.yaml", "output file")
	specials := fs.String("specials", "", "line special table for check")
	_ = fs.Parse(os.Args[2:])

	commands := map[string]func(in, out, specials string) error{
		"rows":     buildRows,
		"specials": writeSpecials,
		"check":    check,
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err := fn(*in, *out, *specials); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}
