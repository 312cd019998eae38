package repository

import (
	"fmt"
	"io"
	"os"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"gopkg.in/yaml.v3"
)

// Seed is the catalog and floor plan loaded from a YAML file
type Seed struct {
	Categories []models.Category
	Products   []models.Product
	Tables     []models.Table
}

type seedFile struct {
	Categories []models.Category `yaml:"categories"`
	Products   []seedProduct     `yaml:"products"`
	Tables     []seedTable       `yaml:"tables"`
}

// prices stay strings in YAML so they never pass through float64
type seedProduct struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
}

type seedTable struct {
	ID     string `yaml:"id"`
	Number int    `yaml:"number"`
	Seats  int    `yaml:"seats"`
	Status string `yaml:"status"`
}

// LoadSeedFile reads a seed from a YAML file on disk
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return LoadSeed(f)
}

// LoadSeed decodes and validates a seed document
func LoadSeed(r io.Reader) (*Seed, error) {
	var raw seedFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	seed := &Seed{
		Categories: raw.Categories,
		Products:   make([]models.Product, 0, len(raw.Products)),
		Tables:     make([]models.Table, 0, len(raw.Tables)),
	}

	productIDs := make(map[string]bool, len(raw.Products))
	for i, p := range raw.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: id is required", i)
		}
		if productIDs[p.ID] {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		productIDs[p.ID] = true

		price, err := money.Parse(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.ID, err)
		}
		seed.Products = append(seed.Products, models.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
		})
	}

	tableIDs := make(map[string]bool, len(raw.Tables))
	for i, t := range raw.Tables {
		if t.ID == "" {
			return nil, fmt.Errorf("table %d: id is required", i)
		}
		if tableIDs[t.ID] {
			return nil, fmt.Errorf("table %s: duplicate id", t.ID)
		}
		tableIDs[t.ID] = true

		if t.Seats < 1 {
			return nil, fmt.Errorf("table %s: seats must be positive", t.ID)
		}
		status := models.TableAvailable
		if t.Status != "" {
			parsed, err := models.ParseTableStatus(t.Status)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.ID, err)
			}
			status = parsed
		}
		seed.Tables = append(seed.Tables, models.Table{
			ID:     t.ID,
			Number: t.Number,
			Seats:  t.Seats,
			Status: status,
		})
	}

	return seed, nil
}
