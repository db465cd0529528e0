package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"golang.org/x/sync/errgroup"
)

// ColSourceFile records which CSV file a row came from.
const ColSourceFile = "source_file"

var (
	fileYearPattern = regexp.MustCompile(`(20\d{2})`)
	yearColumns     = []string{"year", "yr"}

	errNoYear = errors.New("no year column, no year in file name and no default year")
)

// CSVBatchSource reads every *.csv file of a directory (or a single CSV file) into
// one table. Headers are normalised, a year column is guaranteed and the file name
// of each row is kept in the source_file column.
type CSVBatchSource struct {
	path        string
	defaultYear int

	mu      sync.Mutex
	skipped map[string]error
}

// NewCSVBatchSource cria uma nova fonte de lotes CSV.
func NewCSVBatchSource(path string, defaultYear int) *CSVBatchSource {
	return &CSVBatchSource{path: path, defaultYear: defaultYear, skipped: map[string]error{}}
}

func (s *CSVBatchSource) Describe() string {
	return "csv:" + s.path
}

func (s *CSVBatchSource) Close() error {
	return nil
}

// Skipped returns the files left out of the last Load and why.
func (s *CSVBatchSource) Skipped() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]error, len(s.skipped))
	for k, v := range s.skipped {
		out[k] = v
	}
	return out
}

// Files lists the CSV files that Load would read, sorted by name.
func (s *CSVBatchSource) Files() ([]string, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrInputNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing CSV input: %w", err)
	}
	if !info.IsDir() {
		return []string{s.path}, nil
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("error listing CSV directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(s.path, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNoInputFiles, s.path)
	}
	return files, nil
}

// Load parses every file concurrently and merges them in file order.
func (s *CSVBatchSource) Load(ctx context.Context) (*entity.Table, error) {
	log := logger.FromContext(ctx)

	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.skipped = map[string]error{}
	s.mu.Unlock()

	tables := make([]*entity.Table, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := readCSVFile(file, s.defaultYear)
			if err != nil {
				log.Warn().Str("file", file).Err(err).Msg("skipping CSV file")
				s.mu.Lock()
				s.skipped[file] = err
				s.mu.Unlock()
				return nil
			}
			log.Debug().Str("file", file).Int("rows", t.Len()).Msg("read CSV file")
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeTables(tables)
	if merged == nil {
		return nil, fmt.Errorf("%w: no readable CSV file in %s", types.ErrNoInputFiles, s.path)
	}
	return merged, nil
}

// YearFromFileName extracts a 20xx year from a file name, or 0.
func YearFromFileName(path string) int {
	m := fileYearPattern.FindString(filepath.Base(path))
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

func readCSVFile(path string, defaultYear int) (*entity.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = entity.NormalizeColumn(h)
	}

	yearCol := -1
	for _, candidate := range yearColumns {
		for i, c := range columns {
			if c == candidate {
				yearCol = i
				break
			}
		}
		if yearCol >= 0 {
			break
		}
	}

	fillYear := YearFromFileName(path)
	if fillYear == 0 {
		fillYear = defaultYear
	}
	if yearCol < 0 && fillYear == 0 {
		return nil, errNoYear
	}
	if yearCol >= 0 {
		columns[yearCol] = "year"
	} else {
		columns = append(columns, "year")
		yearCol = len(columns) - 1
	}
	columns = append(columns, ColSourceFile)
	width := len(columns)
	fillText := strconv.Itoa(fillYear)
	base := filepath.Base(path)

	table := &entity.Table{Columns: columns}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("error reading CSV record: %w", err)
		}
		if len(record) > len(header) {
			continue
		}

		row := make([]any, width)
		for i := 0; i < width; i++ {
			row[i] = ""
		}
		for i, v := range record {
			row[i] = v
		}
		if fillYear != 0 && strings.TrimSpace(row[yearCol].(string)) == "" {
			row[yearCol] = fillText
		}
		row[width-1] = base
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// mergeTables unions the columns of every table in first-seen order.
func mergeTables(tables []*entity.Table) *entity.Table {
	var merged *entity.Table
	position := map[string]int{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if merged == nil {
			merged = &entity.Table{}
		}
		for _, c := range t.Columns {
			if _, ok := position[c]; !ok {
				position[c] = len(merged.Columns)
				merged.Columns = append(merged.Columns, c)
			}
		}
	}
	if merged == nil {
		return nil
	}

	width := len(merged.Columns)
	for _, t := range tables {
		if t == nil {
			continue
		}
		mapping := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			mapping[i] = position[c]
		}
		for _, row := range t.Rows {
			out := make([]any, width)
			for i := range out {
				out[i] = ""
			}
			for i, v := range row {
				out[mapping[i]] = v
			}
			merged.Rows = append(merged.Rows, out)
		}
	}
	return merged
}
