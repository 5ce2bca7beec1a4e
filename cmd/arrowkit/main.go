// Command arrowkit renders and checks box-and-arrow diagrams.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/arrowkit/internal/config"
	"github.com/ha1tch/arrowkit/internal/log"
	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/diagram"
	"github.com/ha1tch/arrowkit/pkg/render"
)

const usage = `arrowkit - connector diagram toolkit

Usage:
  arrowkit <command> [options]

Commands:
  convert    Convert between formats (json, yaml)
  info       Show diagram information and chosen connector sides
  render     Render a diagram to SVG or PNG
  validate   Validate a diagram file

Examples:
  arrowkit render flow.yaml -o flow.svg
  arrowkit render flow.json -o flow.png --width 1200 --height 800
  arrowkit convert flow.json -o flow.yaml
  arrowkit info flow.yaml

Configuration is read from ~/.arrowkit.toml and ARROWKIT_* variables.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	cfg := loadConfig()
	logFile, err := cfg.LogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	log.Init(log.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   logFile,
	})
	defer log.Close()

	switch cmd {
	case "convert":
		cmdConvert(args)
	case "info":
		cmdInfo(cfg, args)
	case "render":
		cmdRender(cfg, args)
	case "validate":
		cmdValidate(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// loadConfig returns the user configuration with environment overrides.
// A broken file is reported and the defaults are used.
func loadConfig() config.Config {
	cfg := config.Defaults()
	if path, err := config.Path(); err == nil {
		c, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			cfg = c
		}
	}
	config.ApplyEnv(&cfg)
	return cfg
}

func fail(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	log.L().Error(msg)
	fmt.Fprintln(os.Stderr, msg)
	log.Close()
	os.Exit(1)
}

func cmdConvert(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: arrowkit convert <input> [-o output]")
		os.Exit(1)
	}

	input := args[0]
	var output string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	d, err := diagram.ReadFile(input)
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}

	if output == "" {
		output = convertTarget(input)
	}
	if err := diagram.WriteFile(output, d); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	log.WithComponent("convert").Info("converted", "from", input, "to", output)
	fmt.Printf("Written: %s\n", output)
}

// convertTarget swaps a JSON name for a YAML one and the other way round.
func convertTarget(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if diagram.FormatFor(input) == diagram.FormatJSON {
		return base + ".yaml"
	}
	return base + ".json"
}

func cmdInfo(cfg config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: arrowkit info <input>")
		os.Exit(1)
	}

	input := args[0]
	d, err := diagram.ReadFile(input)
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}
	defaults, err := cfg.ArrowOptions()
	if err != nil {
		fail("Error in configuration: %v", err)
	}
	printInfo(os.Stdout, d, diagram.Route(d, defaults))
}

func printInfo(w io.Writer, d *diagram.Diagram, geoms []diagram.EdgeGeometry) {
	if d.Name != "" {
		fmt.Fprintf(w, "Name:        %s\n", d.Name)
	}
	if d.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", d.Description)
	}
	fmt.Fprintf(w, "Nodes:       %d\n", len(d.Nodes))
	fmt.Fprintf(w, "Edges:       %d\n", len(d.Edges))

	var degenerate []string
	fmt.Fprintln(w)
	for _, g := range geoms {
		name := g.Edge.From + " -> " + g.Edge.To
		if !g.OK {
			degenerate = append(degenerate, name)
			continue
		}
		fmt.Fprintf(w, "  %-20s %s -> %s  mid (%.1f, %.1f)\n", name,
			g.SourceSide(), g.TargetSide(), g.Midpoint.X, g.Midpoint.Y)
	}
	if len(degenerate) > 0 {
		fmt.Fprintf(w, "\nNo connector: %s\n", strings.Join(degenerate, ", "))
	}
	if ov := d.Overlapping(); len(ov) > 0 {
		pairs := make([]string, len(ov))
		for i, p := range ov {
			pairs[i] = p[0] + "/" + p[1]
		}
		fmt.Fprintf(w, "Overlapping: %s\n", strings.Join(pairs, ", "))
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: arrowkit validate <input>")
		os.Exit(1)
	}

	input := args[0]
	d, err := validateFile(input)
	if err != nil {
		fail("Validation failed: %v", err)
	}
	fmt.Printf("%s: valid diagram with %d nodes, %d edges\n", input, len(d.Nodes), len(d.Edges))
}

// validateFile checks input against the file schema, then decodes it and
// checks references and styles.
func validateFile(input string) (*diagram.Diagram, error) {
	f := diagram.FormatFor(input)
	if f == diagram.FormatUnknown {
		return nil, fmt.Errorf("%s: unsupported extension %q", input, filepath.Ext(input))
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	if err := diagram.CheckSchema(data, f); err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	d, err := diagram.Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return d, nil
}

// renderOptions are the render command's flags after defaults.
type renderOptions struct {
	output string
	format string
	width  int
	height int
	title  string
}

func parseRenderArgs(cfg config.Config, input string, args []string) (renderOptions, error) {
	ro := renderOptions{
		width:  cfg.Render.Width,
		height: cfg.Render.Height,
	}
	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return ro, fmt.Errorf("%s needs a value", args[i])
		}
		val := args[i+1]
		switch args[i] {
		case "-o", "--output":
			ro.output = val
		case "-t", "--title":
			ro.title = val
		case "-f", "--format":
			ro.format = strings.ToLower(val)
		case "--width", "--height":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return ro, fmt.Errorf("%s: invalid size %q", args[i], val)
			}
			if args[i] == "--width" {
				ro.width = n
			} else {
				ro.height = n
			}
		default:
			return ro, fmt.Errorf("unknown option %s", args[i])
		}
		i++
	}

	if ro.format == "" {
		switch strings.ToLower(filepath.Ext(ro.output)) {
		case ".png":
			ro.format = "png"
		case ".svg":
			ro.format = "svg"
		default:
			ro.format = cfg.Render.Format
		}
	}
	if ro.format != "svg" && ro.format != "png" {
		return ro, fmt.Errorf("unknown output format %q", ro.format)
	}
	if ro.output == "" {
		ro.output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + ro.format
	}
	return ro, nil
}

func cmdRender(cfg config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: arrowkit render <input> [-o output] [--width N] [--height N] [-t title]")
		os.Exit(1)
	}

	input := args[0]
	ro, err := parseRenderArgs(cfg, input, args[1:])
	if err != nil {
		fail("Error: %v", err)
	}
	d, err := diagram.ReadFile(input)
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}
	defaults, err := cfg.ArrowOptions()
	if err != nil {
		fail("Error in configuration: %v", err)
	}
	if ro.title == "" {
		ro.title = d.Name
	}

	f, err := os.Create(ro.output)
	if err != nil {
		fail("Error writing %s: %v", ro.output, err)
	}
	err = renderTo(f, d, defaults, cfg.Render, ro)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(ro.output)
		fail("Error rendering %s: %v", ro.output, err)
	}
	log.WithComponent("render").Info("rendered", "input", input, "output", ro.output, "format", ro.format)
	fmt.Printf("Written: %s\n", ro.output)
}

func renderTo(w io.Writer, d *diagram.Diagram, defaults arrow.Options, rc config.RenderConfig, ro renderOptions) error {
	geoms := diagram.RouteWith(d, defaults, diagram.MetricsForFont(rc.FontSize-2))
	if ro.format == "png" {
		return render.RenderPNG(w, d, geoms, render.PNGOptions{
			Width:    ro.width,
			Height:   ro.height,
			Padding:  rc.Padding,
			FontSize: rc.FontSize,
			Title:    ro.title,
		})
	}
	return render.RenderSVG(w, d, geoms, render.SVGOptions{
		Width:    ro.width,
		Height:   ro.height,
		Padding:  rc.Padding,
		FontSize: rc.FontSize,
		Title:    ro.title,
	})
}
