package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-intake/pkg/intakeconfig"
	"github.com/goliatone/go-intake/pkg/layout"
	"github.com/goliatone/go-intake/pkg/model"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/htmlform"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/source"
	"github.com/goliatone/go-intake/pkg/source/entityschema"
)

func main() {
	schemaPath := flag.String("schema", "data/schema.json", "OpenAPI document carrying the entity schema")
	entity := flag.String("entity", "Agent", "component schema to flatten into fields")
	layoutPath := flag.String("layout", "", "layout document (JSON)")
	configDir := flag.String("config", "", "directory of intake config documents (JSON/YAML)")
	screen := flag.String("screen", "submission", "screen id to load")
	tenant := flag.String("tenant", "", "tenant id")
	role := flag.String("role", "requester", "acting role")
	rendererName := flag.String("renderer", "htmlform", "renderer to use (htmlform, tui)")
	step := flag.Int("step", 1, "step to render (htmlform only)")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	raw, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}

	var cfg intakeconfig.Config
	if *configDir != "" {
		cfg, err = intakeconfig.LoadFS(os.DirFS(*configDir))
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	actor := layout.Actor{ID: "intake-cli", TenantID: *tenant, Admin: true}
	store := layout.NewMemoryStore()
	if *layoutPath != "" {
		doc, err := readLayout(*layoutPath)
		if err != nil {
			log.Fatalf("Failed to read layout: %v", err)
		}
		if _, err := store.SaveLayout(ctx, *screen, doc, actor); err != nil {
			log.Fatalf("Failed to install layout: %v", err)
		}
	}

	renderers := render.NewRegistry()
	htmlRenderer, err := htmlform.New()
	if err != nil {
		log.Fatalf("Failed to configure html renderer: %v", err)
	}
	renderers.MustRegister(htmlRenderer)
	tuiRenderer, err := tui.New()
	if err != nil {
		log.Fatalf("Failed to configure tui renderer: %v", err)
	}
	renderers.MustRegister(tuiRenderer)

	engine := orchestrator.New(
		orchestrator.WithSources(entityschema.New("entity-schema", raw, entityschema.WithSchemaName(*entity))),
		orchestrator.WithLayouts(store),
		orchestrator.WithConfig(cfg),
		orchestrator.WithRegistry(renderers),
		orchestrator.WithDefaultRenderer("htmlform"),
	)

	snapshot, err := engine.Load(ctx, source.Context{TenantID: *tenant, ScreenID: *screen, Role: *role}, actor)
	if err != nil {
		log.Fatalf("Failed to load screen: %v", err)
	}
	for _, name := range snapshot.Degraded {
		log.Printf("warning: source %s degraded, continuing without it", name)
	}

	if *rendererName == "tui" {
		session, err := engine.NewSession(snapshot)
		if err != nil {
			log.Fatalf("Failed to start session: %v", err)
		}
		err = tuiRenderer.RunSession(ctx, session, func(step int, state model.SubmissionState) (render.StepView, error) {
			return engine.StepView(snapshot, state, step)
		})
		if err != nil {
			log.Fatalf("Session failed: %v", err)
		}
		payload, err := json.MarshalIndent(session.State().Values, "", "  ")
		if err != nil {
			log.Fatalf("Failed to serialize values: %v", err)
		}
		writeOutput(*output, payload)
		return
	}

	outputHTML, err := engine.Render(ctx, orchestrator.Request{
		Snapshot: snapshot,
		State:    *model.NewSubmissionState(),
		Step:     *step,
		Renderer: *rendererName,
	})
	if err != nil {
		log.Fatalf("Failed to render step: %v", err)
	}
	writeOutput(*output, outputHTML)
}

func readLayout(path string) (model.LayoutDocument, error) {
	var doc model.LayoutDocument
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func writeOutput(path string, payload []byte) {
	if path == "" {
		fmt.Println(string(payload))
		return
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("Output written to %s\n", path)
}
