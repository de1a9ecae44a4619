// Package warehouse is the BigQuery adapter: bulk file loads, DML statements,
// queries and table management for the pharmacy feed tables.
package warehouse

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
)

// FileFormat is the closed set of supported load-file formats.
type FileFormat int

const (
	FormatCSV FileFormat = iota
	FormatParquet
)

func (f FileFormat) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatParquet:
		return "PARQUET"
	default:
		return "UNKNOWN"
	}
}

func (f FileFormat) sourceFormat() (bigquery.DataFormat, error) {
	switch f {
	case FormatCSV:
		return bigquery.CSV, nil
	case FormatParquet:
		return bigquery.Parquet, nil
	default:
		return "", errors.Errorf("unsupported file format %d", int(f))
	}
}

// WriteMode is the closed set of supported write dispositions.
type WriteMode int

const (
	WriteTruncate WriteMode = iota
	WriteAppend
)

func (m WriteMode) String() string {
	switch m {
	case WriteTruncate:
		return "TRUNCATE"
	case WriteAppend:
		return "APPEND"
	default:
		return "UNKNOWN"
	}
}

func (m WriteMode) disposition() (bigquery.TableWriteDisposition, error) {
	switch m {
	case WriteTruncate:
		return bigquery.WriteTruncate, nil
	case WriteAppend:
		return bigquery.WriteAppend, nil
	default:
		return "", errors.Errorf("unsupported write mode %d", int(m))
	}
}

// LoadOptions tune a bulk file load. The vendor extracts carry ragged trailers
// and quoted newlines, so the defaults are permissive.
type LoadOptions struct {
	SkipLeadingRows     int64
	AllowJaggedRows     bool
	AllowQuotedNewlines bool
	MaxBadRecords       int64
}

// DefaultLoadOptions returns the options used for the standard feed loads.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		SkipLeadingRows:     1,
		AllowJaggedRows:     true,
		AllowQuotedNewlines: true,
		MaxBadRecords:       10,
	}
}

// Loader loads local files into warehouse tables.
type Loader interface {
	LoadFromFile(ctx context.Context, localPath string, format FileFormat, mode WriteMode, tablePath string, opts LoadOptions) error
}

// StatementRunner executes DML and returns the number of affected rows.
type StatementRunner interface {
	RunStatement(ctx context.Context, sql string) (int64, error)
	RunStatementFromFile(ctx context.Context, sqlPath string) (int64, error)
	RunAppendQuery(ctx context.Context, sql, destinationTable string) error
}

// QueryRunner executes SELECTs and returns the rows as column-keyed maps.
type QueryRunner interface {
	RunQuery(ctx context.Context, sql string) ([]map[string]bigquery.Value, error)
	RunQueryFromFile(ctx context.Context, sqlPath string) ([]map[string]bigquery.Value, error)
}

// Warehouse is the full adapter surface.
type Warehouse interface {
	Loader
	StatementRunner
	QueryRunner
	InsertRows(ctx context.Context, tablePath string, rows []map[string]bigquery.Value) error
	EnsureTable(ctx context.Context, tablePath string, schema bigquery.Schema, partitionField string, clusterFields []string) error
}
