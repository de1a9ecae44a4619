package config

import (
	"context"
	"testing"
)

type fakeDocReader struct {
	docs map[string]map[string]interface{}
	errs map[string]error
}

func (f *fakeDocReader) GetConfigDoc(ctx context.Context, collection, doc string) (map[string]interface{}, error) {
	if err := f.errs[doc]; err != nil {
		return nil, err
	}
	return f.docs[doc], nil
}

func TestLoadIntake(t *testing.T) {
	store := &fakeDocReader{docs: map[string]map[string]interface{}{
		"job-data-fetcher-procare": {
			"sftp_host":        "sftp.example.com",
			"sftp_username":    "procare",
			"sftp_remote_path": "/outbox",
			"bucket":           "feeds-prod",
		},
	}}
	cfg, err := LoadIntake(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SftpHost != "sftp.example.com" || cfg.Bucket != "feeds-prod" {
		t.Fatalf("bad decode: %+v", cfg)
	}
}

func TestLoadIntakeRejectsIncompleteDoc(t *testing.T) {
	store := &fakeDocReader{docs: map[string]map[string]interface{}{
		"job-data-fetcher-procare": {
			"sftp_host":     "sftp.example.com",
			"sftp_username": "procare",
			// no remote path or bucket
		},
	}}
	if _, err := LoadIntake(context.Background(), store); err == nil {
		t.Fatal("expected validation error for incomplete document")
	}
}

func TestLoadProcessAppliesDefaults(t *testing.T) {
	store := &fakeDocReader{docs: map[string]map[string]interface{}{
		"srv-data-listener-procare": {
			"rx_procare": map[string]interface{}{
				"bigquery_dataset": "staging",
				"bigquery_tableid": "rx_procare",
			},
			"bi_summary": map[string]interface{}{
				"bigquery_dataset": "staging",
				"bigquery_tableid": "bi_summary",
			},
		},
	}}
	cfg, err := LoadProcess(context.Background(), store, "proj-1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SQLDir != "sql" {
		t.Fatal("bad sql dir default: ", cfg.SQLDir)
	}
	if cfg.RxProcare.TablePath() != "staging.rx_procare" {
		t.Fatal("bad table path: ", cfg.RxProcare.TablePath())
	}
	if len(cfg.RxProcare.Scripts) != 2 || cfg.RxProcare.Scripts[0] != "procare_etl.sql" {
		t.Fatal("bad rx script defaults: ", cfg.RxProcare.Scripts)
	}
	if len(cfg.RxProcare.PostScripts) != 1 || cfg.RxProcare.PostScripts[0] != "procare_mock_remove.sql" {
		t.Fatal("bad rx post-script defaults: ", cfg.RxProcare.PostScripts)
	}
	if cfg.RxProcare.DestinationTable != "proj-1.dwh.rx_pharmacies" {
		t.Fatal("bad append destination default: ", cfg.RxProcare.DestinationTable)
	}
	if cfg.BiSummary.StagingQuery != "select * from staging.rx_procare_bisummary_tmp;" {
		t.Fatal("bad bi staging query default: ", cfg.BiSummary.StagingQuery)
	}
	if len(cfg.BiSummary.PostScripts) != 0 {
		t.Fatal("bi feed should have no post-append scripts by default: ", cfg.BiSummary.PostScripts)
	}
}

func TestLoadProcessKeepsExplicitValues(t *testing.T) {
	store := &fakeDocReader{docs: map[string]map[string]interface{}{
		"srv-data-listener-procare": {
			"sql_dir": "etl/sql",
			"rx_procare": map[string]interface{}{
				"bigquery_dataset":  "staging",
				"bigquery_tableid":  "rx_procare",
				"post_load_scripts": []string{"custom.sql"},
				"destination_table": "proj-1.dwh.custom",
			},
			"bi_summary": map[string]interface{}{
				"bigquery_dataset": "staging",
				"bigquery_tableid": "bi_summary",
			},
		},
	}}
	cfg, err := LoadProcess(context.Background(), store, "proj-1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SQLDir != "etl/sql" {
		t.Fatal("explicit sql dir lost: ", cfg.SQLDir)
	}
	if len(cfg.RxProcare.Scripts) != 1 || cfg.RxProcare.Scripts[0] != "custom.sql" {
		t.Fatal("explicit scripts lost: ", cfg.RxProcare.Scripts)
	}
	if cfg.RxProcare.DestinationTable != "proj-1.dwh.custom" {
		t.Fatal("explicit destination lost: ", cfg.RxProcare.DestinationTable)
	}
}

func TestLoadProcessRejectsMissingFeedTarget(t *testing.T) {
	store := &fakeDocReader{docs: map[string]map[string]interface{}{
		"srv-data-listener-procare": {
			"rx_procare": map[string]interface{}{
				"bigquery_dataset": "staging",
				// no table id
			},
			"bi_summary": map[string]interface{}{
				"bigquery_dataset": "staging",
				"bigquery_tableid": "bi_summary",
			},
		},
	}}
	if _, err := LoadProcess(context.Background(), store, "proj-1"); err == nil {
		t.Fatal("expected validation error for missing table id")
	}
}
