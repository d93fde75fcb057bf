package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

//go:embed seeddata/design_templates.yaml
var defaultTemplatesYAML []byte

type seedTemplate struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	ImageURL string `yaml:"image_url"`
}

type seedFile struct {
	Templates []seedTemplate `yaml:"templates"`
}

// defaultTemplates parses the embedded list of shared design templates.
func defaultTemplates() ([]seedTemplate, error) {
	var f seedFile
	if err := yaml.Unmarshal(defaultTemplatesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse seed templates: %w", err)
	}
	return f.Templates, nil
}

// Seed populates the shared design library with the default backgrounds.
// It only inserts when no shared template exists, so it is safe to call on
// every start.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM design_templates WHERE tenant_id IS NULL").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	templates, err := defaultTemplates()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, t := range templates {
		_, err := tx.Exec(`
			INSERT INTO design_templates (tenant_id, name, category, image_url)
			VALUES (NULL, $1, $2, $3)
		`, t.Name, t.Category, t.ImageURL)
		if err != nil {
			return fmt.Errorf("seed insert template %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with shared design templates", "count", len(templates))
	return nil
}
