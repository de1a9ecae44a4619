package actions

import (
	"context"
	"path"
	"time"

	"github.com/theranica/rxpipe/config"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/docstore"
	"github.com/theranica/rxpipe/feeds"
	"github.com/theranica/rxpipe/frame"
	"github.com/theranica/rxpipe/gcs"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
	"github.com/theranica/rxpipe/warehouse"
)

type ProcessConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ProjectID        string `errorTxt:"project id" mandatory:"yes"`
	Bucket           string `errorTxt:"source bucket" mandatory:"yes"`
	Object           string `errorTxt:"object name" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunFeedProcess normalizes one landed feed file and loads it into the
// warehouse, then runs the feed's post-load refinement: DML scripts, the
// staging append into the shared destination table, and any cleanup scripts.
// A file that matches no known feed is reported, not an error.
func RunFeedProcess(ctx context.Context, cfg *ProcessConfig) (string, error) {
	log := logger.NewServerLogger("rxpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return "", err
	}
	log.Info(cfg.Object, " from bucket ", cfg.Bucket, " has triggered a processing run")

	feed := feeds.DetectFeed(cfg.Object)
	if feed == feeds.FeedUnknown {
		log.Warn("unrecognized file uploaded: ", cfg.Object)
		return constants.StatusUnrecognizedFeed, nil
	}

	docs, err := docstore.NewClient(ctx, log, cfg.ProjectID)
	if err != nil {
		return "", err
	}
	defer docs.Close()

	processCfg, err := config.LoadProcess(ctx, docs, cfg.ProjectID)
	if err != nil {
		return "", err
	}

	store, err := gcs.NewClient(ctx, log)
	if err != nil {
		return "", err
	}
	wh, err := warehouse.NewClient(ctx, log, cfg.ProjectID)
	if err != nil {
		return "", err
	}

	localPath, err := store.Download(ctx, cfg.Bucket, cfg.Object, "")
	if err != nil {
		return "", err
	}

	snapshot := time.Now()
	var normalized *frame.Frame
	var feedCfg config.FeedConfig
	switch feed {
	case feeds.FeedRxProcare:
		f, err := frame.ReadCSVFile(localPath)
		if err != nil {
			return "", err
		}
		normalized, err = feeds.NormalizeRxProcare(log, f, snapshot)
		if err != nil {
			return "", err
		}
		feedCfg = processCfg.RxProcare
	case feeds.FeedBiSummary:
		f, err := frame.ReadExcelFile(localPath)
		if err != nil {
			return "", err
		}
		normalized, err = feeds.NormalizeBiSummary(log, f, snapshot)
		if err != nil {
			return "", err
		}
		feedCfg = processCfg.BiSummary
	}

	// The normalized frame replaces the raw download on disk before the load.
	if err := normalized.WriteCSVFile(log, localPath); err != nil {
		return "", err
	}
	if err := wh.LoadFromFile(ctx, localPath, warehouse.FormatCSV, warehouse.WriteAppend,
		feedCfg.TablePath(), warehouse.DefaultLoadOptions()); err != nil {
		return "", err
	}

	for _, script := range feedCfg.Scripts {
		if _, err := wh.RunStatementFromFile(ctx, path.Join(processCfg.SQLDir, script)); err != nil {
			return "", err
		}
	}
	if err := wh.RunAppendQuery(ctx, feedCfg.StagingQuery, feedCfg.DestinationTable); err != nil {
		return "", err
	}
	for _, script := range feedCfg.PostScripts {
		if _, err := wh.RunStatementFromFile(ctx, path.Join(processCfg.SQLDir, script)); err != nil {
			return "", err
		}
	}

	log.Info("feed ", feed.String(), " processed from ", cfg.Object)
	return constants.StatusOK, nil
}
