// Command catalogschema writes JSON schemas for the catalog YAML files so
// editors can validate heroes.yaml, spells.yaml and effects.yaml.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
)

// documents maps each schema file to the catalog file shape it validates.
var documents = map[string]struct {
	title string
	value any
}{
	"heroes.schema.json":  {"GridClash Heroes", new(catalog.HeroesConfig)},
	"spells.schema.json":  {"GridClash Spells", new(catalog.SpellsConfig)},
	"effects.schema.json": {"GridClash Effects", new(catalog.EffectsConfig)},
	"catalog.schema.json": {"GridClash Catalog", new(catalog.Files)},
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas to")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		doc := documents[name]
		schema := buildSchema(doc.title, doc.value)
		path := filepath.Join(outDir, name)
		if err := writeSchema(path, schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
	}
}

func buildSchema(title string, v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)
	schema.Title = title
	schema.Description = "Validates designer-authored catalog entries; descriptor types: " + descriptorList()
	return schema
}

func descriptorList() string {
	out := ""
	for i, dt := range catalog.DescriptorTypes {
		if i > 0 {
			out += ", "
		}
		out += string(dt)
	}
	return out
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
