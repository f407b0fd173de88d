// Package main seeds the catalog from a YAML fixture file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/catalog"
	catalogsvc "github.com/ahan30/mindsaidurai-tools/internal/app/services/catalog"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage/postgres"
	"github.com/ahan30/mindsaidurai-tools/internal/config"
	"github.com/ahan30/mindsaidurai-tools/internal/platform/database"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

type seedTool struct {
	Name             string         `yaml:"name"`
	Slug             string         `yaml:"slug"`
	Description      string         `yaml:"description"`
	ShortDescription string         `yaml:"short_description"`
	Icon             string         `yaml:"icon"`
	IsPremium        bool           `yaml:"is_premium"`
	IsAIGenerated    bool           `yaml:"is_ai_generated"`
	Tags             []string       `yaml:"tags"`
	Metadata         map[string]any `yaml:"metadata"`
}

type seedCategory struct {
	Name        string     `yaml:"name"`
	Slug        string     `yaml:"slug"`
	Icon        string     `yaml:"icon"`
	Color       string     `yaml:"color"`
	Description string     `yaml:"description"`
	Tools       []seedTool `yaml:"tools"`
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
}

func main() {
	_ = godotenv.Load()

	path := flag.String("file", "seed.yaml", "Path to the seed fixture")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.LoggingConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format}).Named("seed")

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixture seedFile
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	store := postgres.New(db)
	svc := catalogsvc.New(store, store, log)

	for _, sc := range fixture.Categories {
		created, err := svc.CreateCategory(ctx, catalog.Category{
			Name:        sc.Name,
			Slug:        sc.Slug,
			Icon:        sc.Icon,
			Color:       sc.Color,
			Description: sc.Description,
		})
		if err != nil {
			return fmt.Errorf("create category %s: %w", sc.Slug, err)
		}

		for _, st := range sc.Tools {
			var metadata json.RawMessage
			if len(st.Metadata) > 0 {
				metadata, err = json.Marshal(st.Metadata)
				if err != nil {
					return fmt.Errorf("encode metadata for %s: %w", st.Slug, err)
				}
			}

			if _, err := svc.CreateTool(ctx, catalog.Tool{
				Name:             st.Name,
				Slug:             st.Slug,
				Description:      st.Description,
				ShortDescription: st.ShortDescription,
				CategoryID:       created.ID,
				Icon:             st.Icon,
				IsPremium:        st.IsPremium,
				IsAIGenerated:    st.IsAIGenerated,
				Tags:             st.Tags,
				Metadata:         metadata,
				IsActive:         true,
			}); err != nil {
				return fmt.Errorf("create tool %s: %w", st.Slug, err)
			}
		}

		log.WithField("category", created.Slug).WithField("tools", len(sc.Tools)).Info("seeded")
	}

	return nil
}
