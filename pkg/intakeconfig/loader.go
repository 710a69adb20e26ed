package intakeconfig

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/model"
)

// LoadFS walks the provided filesystem and merges every JSON/YAML config file
// into a single Config. When fsys is nil or holds no config files, the
// returned config is empty. Later files extend earlier ones; a table defined
// twice is an error so per-tenant overrides stay explicit.
func LoadFS(fsys fs.FS) (Config, error) {
	var merged Config
	if fsys == nil {
		return merged, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("intakeconfig: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return merge(&merged, doc, path)
	})
	if err != nil {
		return Config{}, err
	}

	if err := validate(merged); err != nil {
		return Config{}, err
	}
	return merged, nil
}

func parseDocument(data []byte, path string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("intakeconfig: file %s is empty", path)
	}

	var doc Config
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return Config{}, fmt.Errorf("intakeconfig: parse %s: invalid JSON or YAML", path)
}

func merge(into *Config, doc Config, path string) error {
	if len(doc.Assignment.Steps) > 0 {
		if len(into.Assignment.Steps) > 0 {
			return fmt.Errorf("intakeconfig: file %s redefines the assignment mapping", path)
		}
		into.Assignment = doc.Assignment
	}
	if len(doc.FallbackSections) > 0 {
		if len(into.FallbackSections) > 0 {
			return fmt.Errorf("intakeconfig: file %s redefines the fallback sections", path)
		}
		into.FallbackSections = doc.FallbackSections
	}

	for vendor, models := range doc.VendorModels {
		if into.VendorModels == nil {
			into.VendorModels = make(map[string][]string)
		}
		if _, exists := into.VendorModels[vendor]; exists {
			return fmt.Errorf("intakeconfig: file %s redefines vendor %q", path, vendor)
		}
		into.VendorModels[vendor] = append([]string(nil), models...)
	}

	into.SelectAll = append(into.SelectAll, doc.SelectAll...)
	into.Resets = append(into.Resets, doc.Resets...)

	for screen, bypass := range doc.AccessBypass {
		if into.AccessBypass == nil {
			into.AccessBypass = make(map[string]bool)
		}
		into.AccessBypass[screen] = bypass
	}
	for screen, rules := range doc.AccessRules {
		if into.AccessRules == nil {
			into.AccessRules = make(map[string][]model.FieldAccessRule)
		}
		into.AccessRules[screen] = append(into.AccessRules[screen], rules...)
	}
	return nil
}

func validate(cfg Config) error {
	for _, step := range cfg.Assignment.Steps {
		if strings.TrimSpace(step.SectionID) == "" {
			return fmt.Errorf("intakeconfig: assignment step %q has no section id", step.Title)
		}
		if len(step.Keywords) == 0 {
			return fmt.Errorf("intakeconfig: assignment step %q has no keywords", step.SectionID)
		}
	}
	for _, rule := range cfg.SelectAll {
		if rule.FieldName == "" || rule.Marker == "" {
			return fmt.Errorf("intakeconfig: select_all rule needs both field and marker, got %+v", rule)
		}
	}
	for _, rule := range cfg.Resets {
		if rule.Parent == "" || rule.Child == "" {
			return fmt.Errorf("intakeconfig: reset rule needs both parent and child, got %+v", rule)
		}
	}
	if len(cfg.FallbackSections) > 0 {
		doc := model.LayoutDocument{ID: "fallback", Name: "fallback", Sections: cfg.FallbackSections}
		if issues := model.ValidateLayout(doc); len(issues) > 0 {
			return fmt.Errorf("intakeconfig: fallback sections invalid: %v", issues)
		}
	}
	return nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
