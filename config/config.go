// Package config loads the pipeline's typed configuration from the document
// store, with an optional local YAML override file for development.
package config

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/helper"
)

// DocReader fetches one configuration document as a field map.
// *docstore.Client implements it.
type DocReader interface {
	GetConfigDoc(ctx context.Context, collection, doc string) (map[string]interface{}, error)
}

// IntakeConfig drives one scheduled mailbox fetch. The SFTP password is
// deliberately absent: it comes from the environment, never the doc store.
type IntakeConfig struct {
	SftpHost       string `mapstructure:"sftp_host" errorTxt:"sftp host" mandatory:"yes"`
	SftpUsername   string `mapstructure:"sftp_username" errorTxt:"sftp username" mandatory:"yes"`
	SftpRemotePath string `mapstructure:"sftp_remote_path" errorTxt:"sftp remote path" mandatory:"yes"`
	Bucket         string `mapstructure:"bucket" errorTxt:"destination bucket" mandatory:"yes"`
}

// FeedConfig is one feed's warehouse target and post-load refinement plan.
// Scripts run before the append query, PostScripts after it.
type FeedConfig struct {
	Dataset          string   `mapstructure:"bigquery_dataset" errorTxt:"bigquery dataset" mandatory:"yes"`
	TableID          string   `mapstructure:"bigquery_tableid" errorTxt:"bigquery table id" mandatory:"yes"`
	Scripts          []string `mapstructure:"post_load_scripts"`
	PostScripts      []string `mapstructure:"post_append_scripts"`
	StagingQuery     string   `mapstructure:"staging_query"`
	DestinationTable string   `mapstructure:"destination_table"`
}

// TablePath returns the feed's staging table as dataset.table.
func (f FeedConfig) TablePath() string {
	return f.Dataset + "." + f.TableID
}

// ProcessConfig drives one storage-triggered feed run.
type ProcessConfig struct {
	RxProcare FeedConfig `mapstructure:"rx_procare"`
	BiSummary FeedConfig `mapstructure:"bi_summary"`
	SQLDir    string     `mapstructure:"sql_dir"`
}

func decode(data map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(data, out); err != nil {
		return errors.Wrap(err, "failed to decode configuration document")
	}
	return nil
}

// LoadIntake fetches and validates the mailbox-fetcher configuration.
func LoadIntake(ctx context.Context, store DocReader) (*IntakeConfig, error) {
	data, err := fetchDoc(ctx, store, constants.ConfigCollectionJobs, constants.ConfigDocFetcherProcare)
	if err != nil {
		return nil, err
	}
	cfg := &IntakeConfig{}
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProcess fetches and validates the feed-listener configuration,
// filling per-feed refinement defaults for fields the document omits.
// projectID qualifies the default append destination.
func LoadProcess(ctx context.Context, store DocReader, projectID string) (*ProcessConfig, error) {
	data, err := fetchDoc(ctx, store, constants.ConfigCollectionServices, constants.ConfigDocListenerProcare)
	if err != nil {
		return nil, err
	}
	cfg := &ProcessConfig{}
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	applyProcessDefaults(cfg, projectID)
	if err := helper.ValidateStructIsPopulated(&cfg.RxProcare); err != nil {
		return nil, errors.Wrap(err, "rx_procare feed config")
	}
	if err := helper.ValidateStructIsPopulated(&cfg.BiSummary); err != nil {
		return nil, errors.Wrap(err, "bi_summary feed config")
	}
	return cfg, nil
}

func applyProcessDefaults(cfg *ProcessConfig, projectID string) {
	if cfg.SQLDir == "" {
		cfg.SQLDir = "sql"
	}
	appendDest := projectID + ".dwh.rx_pharmacies"

	rx := &cfg.RxProcare
	if rx.Scripts == nil {
		rx.Scripts = []string{"procare_etl.sql", "rx_procare.sql"}
	}
	if rx.PostScripts == nil {
		rx.PostScripts = []string{"procare_mock_remove.sql"}
	}
	if rx.StagingQuery == "" {
		rx.StagingQuery = "select * from staging.rx_procare_tmp;"
	}
	if rx.DestinationTable == "" {
		rx.DestinationTable = appendDest
	}

	bi := &cfg.BiSummary
	if bi.Scripts == nil {
		bi.Scripts = []string{"bi_summary.sql"}
	}
	if bi.StagingQuery == "" {
		bi.StagingQuery = "select * from staging.rx_procare_bisummary_tmp;"
	}
	if bi.DestinationTable == "" {
		bi.DestinationTable = appendDest
	}
}
