package intake

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/gcs"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
	"github.com/theranica/rxpipe/sftp"
)

// TransferClient is the mailbox session surface the orchestrator drives.
// *sftp.Client implements it.
type TransferClient interface {
	Connect() error
	ListEntries(remotePath string) ([]sftp.RemoteFileEntry, error)
	DownloadFile(remotePath, localPath string) error
	Close() error
}

// FileResult records the outcome for one file of the batch. A file that failed
// to download or upload is dropped from the run, not retried.
type FileResult struct {
	Name      string
	LocalPath string
	Err       error
}

// BatchReport summarizes one intake run.
type BatchReport struct {
	RunID    string
	Matched  int
	New      int
	Uploaded int
	Results  []FileResult
}

// Config wires one intake run.
type Config struct {
	Log        logger.Logger
	Transfer   TransferClient
	Store      gcs.ObjectStore
	Bucket     string `errorTxt:"destination bucket" mandatory:"yes"`
	RemotePath string `errorTxt:"remote path" mandatory:"yes"`
}

// Run lists the remote mailbox, filters candidates, downloads survivors to
// scratch space and uploads them to durable storage. Session release is
// guaranteed on every exit path. Per-file transfer failures are isolated:
// the file is dropped from the batch and the run continues.
func Run(ctx context.Context, cfg *Config) (status string, report *BatchReport, err error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return "", nil, err
	}
	log := cfg.Log
	report = &BatchReport{RunID: xid.New().String()}
	log.Info("intake run ", report.RunID, " starting for remote path ", cfg.RemotePath)

	// Close is idempotent, so release is registered before the connect attempt
	// to guarantee it runs on every exit path.
	defer func() {
		if cerr := cfg.Transfer.Close(); cerr != nil {
			log.Warn("failed to close transfer session: ", cerr)
		}
	}()
	if err := cfg.Transfer.Connect(); err != nil {
		return "", report, err
	}

	entries, err := cfg.Transfer.ListEntries(cfg.RemotePath)
	if err != nil {
		return "", report, err
	}

	filter, err := NewFilter(log, cfg.Store, cfg.Bucket)
	if err != nil {
		return "", report, err
	}
	var matched []sftp.RemoteFileEntry
	for _, e := range entries {
		ok, err := filter.Accept(ctx, e.Name, e.ModifiedAt)
		if err != nil {
			return "", report, err
		}
		if ok {
			matched = append(matched, e)
		}
	}
	report.Matched = len(matched)
	if len(matched) == 0 {
		log.Info("no matching files found")
		return constants.StatusNoFilesProcessed, report, nil
	}

	// Time has passed since the filter's embedded probe, so re-check the
	// destination before spending bandwidth on downloads.
	var fresh []sftp.RemoteFileEntry
	for _, e := range matched {
		exists, err := cfg.Store.Exists(ctx, cfg.Bucket, path.Base(e.Name))
		if err != nil {
			return "", report, errors.Wrap(err, "failed destination existence re-check")
		}
		if !exists {
			fresh = append(fresh, e)
		}
	}
	report.New = len(fresh)
	if len(fresh) == 0 {
		log.Info("all matching files already exist in the bucket")
		return constants.StatusNoNewFiles, report, nil
	}

	for _, e := range fresh {
		res := FileResult{Name: e.Name, LocalPath: helper.ScratchPath(e.Name)}
		remote := strings.TrimRight(cfg.RemotePath, "/") + "/" + e.Name
		if err := cfg.Transfer.DownloadFile(remote, res.LocalPath); err != nil {
			log.Error("dropping file after failed download: ", e.Name, ": ", err)
			res.Err = err
			res.LocalPath = ""
		}
		report.Results = append(report.Results, res)
	}

	for i := range report.Results {
		res := &report.Results[i]
		if res.Err != nil {
			continue
		}
		if err := cfg.Store.Upload(ctx, cfg.Bucket, res.LocalPath, path.Base(res.Name)); err != nil {
			log.Error("dropping file after failed upload: ", res.Name, ": ", err)
			res.Err = err
			continue
		}
		report.Uploaded++
	}

	log.Info("intake run ", report.RunID, " complete: ", report.Uploaded, " of ", report.New, " files uploaded")
	return constants.StatusOK, report, nil
}
