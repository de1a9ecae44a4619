package warehouse

import (
	"context"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

type client struct {
	log logger.Logger
	api *bigquery.Client
}

// NewClient creates a Warehouse backed by BigQuery using application default
// credentials.
func NewClient(ctx context.Context, log logger.Logger, projectID string) (Warehouse, error) {
	api, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bigquery client")
	}
	return &client{log: log, api: api}, nil
}

// parseTablePath splits "dataset.table" or "project.dataset.table".
// An empty project means the client's default project.
func parseTablePath(tablePath string) (project, dataset, table string, err error) {
	parts := strings.Split(tablePath, ".")
	switch len(parts) {
	case 2:
		return "", parts[0], parts[1], nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", errors.Errorf("invalid table path %q, want dataset.table or project.dataset.table", tablePath)
	}
}

func (c *client) table(tablePath string) (*bigquery.Table, error) {
	project, dataset, table, err := parseTablePath(tablePath)
	if err != nil {
		return nil, err
	}
	if project != "" {
		return c.api.DatasetInProject(project, dataset).Table(table), nil
	}
	return c.api.Dataset(dataset).Table(table), nil
}

func (c *client) LoadFromFile(ctx context.Context, localPath string, format FileFormat, mode WriteMode, tablePath string, opts LoadOptions) error {
	sourceFormat, err := format.sourceFormat()
	if err != nil {
		return err
	}
	disposition, err := mode.disposition()
	if err != nil {
		return err
	}
	tbl, err := c.table(tablePath)
	if err != nil {
		return err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open load file %q", localPath)
	}
	defer f.Close()

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = sourceFormat
	source.AutoDetect = true
	source.SkipLeadingRows = opts.SkipLeadingRows
	source.AllowJaggedRows = opts.AllowJaggedRows
	source.AllowQuotedNewlines = opts.AllowQuotedNewlines
	source.MaxBadRecords = opts.MaxBadRecords

	loader := tbl.LoaderFrom(source)
	loader.WriteDisposition = disposition
	job, err := loader.Run(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to start load of %q into %q", localPath, tablePath)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed waiting for load of %q into %q", localPath, tablePath)
	}
	if err := status.Err(); err != nil {
		return errors.Wrapf(err, "load of %q into %q failed", localPath, tablePath)
	}
	c.log.Info("loaded file ", localPath, " into table ", tablePath)
	return nil
}

func readSQLFile(sqlPath string) (string, error) {
	b, err := os.ReadFile(sqlPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read sql file %q", sqlPath)
	}
	return string(b), nil
}

func (c *client) RunStatement(ctx context.Context, sql string) (int64, error) {
	job, err := c.api.Query(sql).Run(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start dml statement")
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed waiting for dml statement")
	}
	if err := status.Err(); err != nil {
		return 0, errors.Wrap(err, "dml statement failed")
	}
	var affected int64
	if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		affected = qs.NumDMLAffectedRows
	}
	c.log.Info("dml statement executed, ", affected, " records affected")
	return affected, nil
}

func (c *client) RunStatementFromFile(ctx context.Context, sqlPath string) (int64, error) {
	sql, err := readSQLFile(sqlPath)
	if err != nil {
		return 0, err
	}
	return c.RunStatement(ctx, sql)
}

func (c *client) RunQuery(ctx context.Context, sql string) ([]map[string]bigquery.Value, error) {
	it, err := c.api.Query(sql).Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run query")
	}
	var rows []map[string]bigquery.Value
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read query results")
		}
		rows = append(rows, row)
	}
	c.log.Info(len(rows), " records returned from the warehouse")
	return rows, nil
}

func (c *client) RunQueryFromFile(ctx context.Context, sqlPath string) ([]map[string]bigquery.Value, error) {
	sql, err := readSQLFile(sqlPath)
	if err != nil {
		return nil, err
	}
	return c.RunQuery(ctx, sql)
}

func (c *client) RunAppendQuery(ctx context.Context, sql, destinationTable string) error {
	tbl, err := c.table(destinationTable)
	if err != nil {
		return err
	}
	q := c.api.Query(sql)
	q.Dst = tbl
	q.WriteDisposition = bigquery.WriteAppend
	job, err := q.Run(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to start append query into %q", destinationTable)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed waiting for append query into %q", destinationTable)
	}
	if err := status.Err(); err != nil {
		return errors.Wrapf(err, "append query into %q failed", destinationTable)
	}
	c.log.Info("append query executed successfully on table ", destinationTable)
	return nil
}

// jsonRow lets a plain map ride the streaming insert API. An empty insert id
// disables best-effort dedup, matching bulk diagnostic inserts.
type jsonRow map[string]bigquery.Value

func (r jsonRow) Save() (map[string]bigquery.Value, string, error) {
	return r, "", nil
}

func (c *client) InsertRows(ctx context.Context, tablePath string, rows []map[string]bigquery.Value) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := c.table(tablePath)
	if err != nil {
		return err
	}
	savers := make([]jsonRow, len(rows))
	for i, r := range rows {
		savers[i] = jsonRow(r)
	}
	if err := tbl.Inserter().Put(ctx, savers); err != nil {
		return errors.Wrapf(err, "failed to insert %d rows into %q", len(rows), tablePath)
	}
	c.log.Info(len(rows), " rows inserted successfully to ", tablePath)
	return nil
}

func (c *client) EnsureTable(ctx context.Context, tablePath string, schema bigquery.Schema, partitionField string, clusterFields []string) error {
	tbl, err := c.table(tablePath)
	if err != nil {
		return err
	}
	_, err = tbl.Metadata(ctx)
	if err == nil {
		return nil
	}
	if gerr, ok := err.(*googleapi.Error); !ok || gerr.Code != http.StatusNotFound {
		return errors.Wrapf(err, "failed to read metadata for table %q", tablePath)
	}
	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: partitionField,
		},
	}
	if len(clusterFields) > 0 {
		meta.Clustering = &bigquery.Clustering{Fields: clusterFields}
	}
	if err := tbl.Create(ctx, meta); err != nil {
		return errors.Wrapf(err, "failed to create table %q", tablePath)
	}
	c.log.Info("created table ", tablePath)
	return nil
}
