package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"gopkg.in/yaml.v3"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// --- Documentos por nível ---

func (r *ExportRepositoryImpl) ExportDocument(doc entity.Document, outputDir, format string) (string, error) {
	switch format {
	case FormatJSON, "":
		return r.exportJSON(doc, outputDir)
	case FormatYAML:
		return r.exportYAML(doc, outputDir)
	default:
		return "", fmt.Errorf("unsupported document format %q", format)
	}
}

func (r *ExportRepositoryImpl) exportJSON(doc entity.Document, outputDir string) (string, error) {
	outputFilename, err := generateFilename(string(doc.Level), outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) exportYAML(doc entity.Document, outputDir string) (string, error) {
	outputFilename, err := generateFilename(string(doc.Level), outputDir, "yaml")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating YAML file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("error encoding YAML data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("error flushing YAML data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ReadEntities loads a hierarchical level previously written as JSON.
func (r *ExportRepositoryImpl) ReadEntities(level entity.Level, inputDir string) ([]entity.Entity, error) {
	path := filepath.Join(inputDir, string(level)+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	var doc entity.EntityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	for i := range doc.Data {
		doc.Data[i].Level = level
	}
	return doc.Data, nil
}

// --- Relatórios CSV ---

func (r *ExportRepositoryImpl) ExportLevelToCSV(level entity.Level, entities []entity.Entity, outputDir string) (string, error) {
	outputFilename, err := generateFilename(string(level), outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "parent_id", "description", "year", "count", "amount"}); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, e := range entities {
		for _, year := range sortedYears(e.Years) {
			fig := e.Years[year]
			record := []string{
				e.ID,
				e.ParentID,
				e.Description,
				year,
				strconv.Itoa(fig.Count),
				fig.Amount.String(),
			}
			if err := writer.Write(record); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportYearlyTotalsToCSV(totals []entity.YearlyTotal, outputDir string) (string, error) {
	outputFilename, err := generateFilename(string(entity.LevelYearlyTotals), outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write([]string{"year", "count", "amount"})
	for _, t := range totals {
		writer.Write([]string{strconv.Itoa(t.Year), strconv.Itoa(t.Count), t.Amount.String()})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename monta o caminho do arquivo e garante que o diretório exista.
// O nome é fixo para que execuções repetidas sobrescrevam a saída anterior.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", base, ext)), nil
}

// ensureParent cria o diretório de um caminho de saída explícito.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	return nil
}

func sortedYears(years map[string]entity.YearFigure) []string {
	keys := make([]string, 0, len(years))
	for k := range years {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
