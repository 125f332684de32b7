package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/relist-app/relist/internal/models"
)

// draftRow is the flattened on-disk record for one draft.
type draftRow struct {
	ID          string  `parquet:"id" yaml:"id"`
	Status      string  `parquet:"status" yaml:"status"`
	Title       string  `parquet:"title" yaml:"title"`
	Description string  `parquet:"description" yaml:"description,omitempty"`
	Price       float64 `parquet:"price" yaml:"price"`
	Category    string  `parquet:"category" yaml:"category,omitempty"`
	Brand       string  `parquet:"brand" yaml:"brand,omitempty"`
	Confidence  float64 `parquet:"confidence" yaml:"confidence"`
	CreatedAt   string  `parquet:"created_at" yaml:"createdat"`
}

// yamlExport is the document shape for YAML exports.
type yamlExport struct {
	ExportedAt string     `yaml:"exportedat"`
	Count      int        `yaml:"count"`
	Drafts     []draftRow `yaml:"drafts"`
}

// WriteDrafts saves the given drafts to path. The format is detected from
// the file extension (.parquet or .yaml/.yml).
func WriteDrafts(drafts []models.Draft, path string) error {
	rows := make([]draftRow, 0, len(drafts))
	for _, d := range drafts {
		rows = append(rows, draftRow{
			ID:          d.ID,
			Status:      string(d.Status),
			Title:       d.Title,
			Description: d.Description,
			Price:       d.Price,
			Category:    d.Category,
			Brand:       d.Brand,
			Confidence:  d.Confidence,
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		})
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".parquet":
		return writeParquet(rows, path)
	case ".yaml", ".yml":
		return writeYAML(rows, path)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: .parquet, .yaml)", ext)
	}
}

func writeParquet(rows []draftRow, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[draftRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("Drafts exported", "path", path, "format", "parquet", "count", len(rows))
	return nil
}

func writeYAML(rows []draftRow, path string) error {
	doc := yamlExport{
		ExportedAt: time.Now().Format("2006-01-02_15-04-05"),
		Count:      len(rows),
		Drafts:     rows,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	slog.Info("Drafts exported", "path", path, "format", "yaml", "count", len(rows))
	return nil
}
