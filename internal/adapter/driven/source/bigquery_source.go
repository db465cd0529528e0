package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQuerySource reads line items from a BigQuery table (dataset.table).
type BigQuerySource struct {
	client *bigquery.Client
	table  string
}

// NewBigQuerySource creates a client for project, optionally with a service account file.
func NewBigQuerySource(ctx context.Context, project, table, credentials string) (*BigQuerySource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	return &BigQuerySource{client: client, table: table}, nil
}

func (s *BigQuerySource) Describe() string {
	return "bigquery:" + s.table
}

func (s *BigQuerySource) Close() error {
	return s.client.Close()
}

func (s *BigQuerySource) Load(ctx context.Context) (*entity.Table, error) {
	q := s.client.Query(fmt.Sprintf("SELECT * FROM `%s`", s.table))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, s.wrap(err)
	}

	table := &entity.Table{}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, s.wrap(err)
		}
		if table.Columns == nil {
			for _, f := range it.Schema {
				table.Columns = append(table.Columns, f.Name)
			}
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		table.Rows = append(table.Rows, values)
	}
	if table.Columns == nil {
		for _, f := range it.Schema {
			table.Columns = append(table.Columns, f.Name)
		}
	}
	return table, nil
}

func (s *BigQuerySource) wrap(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: table %s", types.ErrInputNotFound, s.table)
	}
	return fmt.Errorf("bigquery source: query %s: %w", s.table, err)
}
