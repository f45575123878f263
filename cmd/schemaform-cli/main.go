package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/orchestrator"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

func main() {
	source := flag.String("source", "", "schema document path or URL")
	mode := flag.String("mode", "full", "form mode: basic or full")
	renderer := flag.String("renderer", "vanilla", "renderer to use: vanilla or tui")
	output := flag.String("output", "", "output file (stdout if empty)")
	title := flag.String("title", "", "override the form title")
	extract := flag.Bool("extract", false, "with the tui renderer, also print the nested payload")
	flag.Parse()

	ctx := context.Background()

	src := parseSource(*source)
	if src == nil {
		log.Fatalf("invalid source: %q", *source)
	}

	formMode, err := parseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}

	registry := render.NewRegistry()
	htmlRenderer, err := vanilla.New()
	if err != nil {
		log.Fatalf("init vanilla renderer: %v", err)
	}
	registry.MustRegister(htmlRenderer)

	tuiRenderer := tui.New()
	registry.MustRegister(tuiRenderer)

	gen := orchestrator.New(orchestrator.WithRegistry(registry))

	req := orchestrator.Request{
		Source:   src,
		Title:    *title,
		Mode:     formMode,
		Renderer: *renderer,
	}

	if *renderer == tuiRenderer.Name() {
		if err := runInteractive(ctx, gen, tuiRenderer, req, *extract, *output); err != nil {
			log.Fatal(err)
		}
		return
	}

	rendered, err := gen.Generate(ctx, req)
	if err != nil {
		log.Fatalf("generate form: %v", err)
	}
	if err := writeOutput(*output, rendered); err != nil {
		log.Fatal(err)
	}
}

// runInteractive collects answers through the TUI and optionally folds them
// into the nested payload before writing.
func runInteractive(ctx context.Context, gen *orchestrator.Orchestrator, renderer *tui.Renderer, req orchestrator.Request, extract bool, output string) error {
	rendered, err := gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			return errors.New("aborted")
		}
		return fmt.Errorf("generate form: %w", err)
	}

	if !extract {
		return writeOutput(output, rendered)
	}

	var values map[string]any
	if err := json.Unmarshal(rendered, &values); err != nil {
		return fmt.Errorf("decode collected values: %w", err)
	}
	record, err := gen.ExtractSubmission(ctx, req, values)
	if err != nil {
		return fmt.Errorf("extract submission: %w", err)
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return writeOutput(output, append(payload, '\n'))
}

func writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Form written to %s\n", path)
		return nil
	}
	fmt.Println(string(data))
	return nil
}

func parseMode(raw string) (form.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "basic":
		return form.ModeBasic, nil
	case "", "full":
		return form.ModeFull, nil
	default:
		return "", fmt.Errorf("invalid mode: %q", raw)
	}
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}
