package warehouse

import (
	"testing"

	"cloud.google.com/go/bigquery"
)

func TestDefaultLoadOptions(t *testing.T) {
	opts := DefaultLoadOptions()
	if opts.SkipLeadingRows != 1 {
		t.Fatal("bad SkipLeadingRows: ", opts.SkipLeadingRows)
	}
	if !opts.AllowJaggedRows {
		t.Fatal("expected AllowJaggedRows to default on")
	}
	if !opts.AllowQuotedNewlines {
		t.Fatal("expected AllowQuotedNewlines to default on")
	}
	if opts.MaxBadRecords != 10 {
		t.Fatal("bad MaxBadRecords: ", opts.MaxBadRecords)
	}
}

func TestFileFormatMapping(t *testing.T) {
	if f, err := FormatCSV.sourceFormat(); err != nil || f != bigquery.CSV {
		t.Fatal("bad CSV mapping: ", f, err)
	}
	if f, err := FormatParquet.sourceFormat(); err != nil || f != bigquery.Parquet {
		t.Fatal("bad Parquet mapping: ", f, err)
	}
	if _, err := FileFormat(99).sourceFormat(); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWriteModeMapping(t *testing.T) {
	if d, err := WriteTruncate.disposition(); err != nil || d != bigquery.WriteTruncate {
		t.Fatal("bad truncate mapping: ", d, err)
	}
	if d, err := WriteAppend.disposition(); err != nil || d != bigquery.WriteAppend {
		t.Fatal("bad append mapping: ", d, err)
	}
	if _, err := WriteMode(99).disposition(); err == nil {
		t.Fatal("expected error for unknown write mode")
	}
}

func TestParseTablePath(t *testing.T) {
	p, d, tbl, err := parseTablePath("feeds.rx_procare")
	if err != nil || p != "" || d != "feeds" || tbl != "rx_procare" {
		t.Fatal("bad 2-part parse: ", p, d, tbl, err)
	}
	p, d, tbl, err = parseTablePath("proj-1.feeds.rx_procare")
	if err != nil || p != "proj-1" || d != "feeds" || tbl != "rx_procare" {
		t.Fatal("bad 3-part parse: ", p, d, tbl, err)
	}
	if _, _, _, err := parseTablePath("rx_procare"); err == nil {
		t.Fatal("expected error for bare table name")
	}
}
