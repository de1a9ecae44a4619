// Package actions holds the top-level operations wired to CLI commands and
// HTTP trigger routes: the scheduled mailbox fetch and the storage-triggered
// feed processing run.
package actions

import (
	"context"

	"github.com/theranica/rxpipe/config"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/docstore"
	"github.com/theranica/rxpipe/gcs"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/intake"
	"github.com/theranica/rxpipe/logger"
	"github.com/theranica/rxpipe/sftp"
)

type FetchConfig struct {
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ProjectID        string `errorTxt:"project id" mandatory:"yes"`
	StackDumpOnPanic bool
}

// RunMailboxFetch loads the fetcher configuration from the document store,
// connects to the vendor mailbox and transfers new matching files into the
// landing bucket. The SFTP password comes from the environment only.
func RunMailboxFetch(ctx context.Context, cfg *FetchConfig) (string, error) {
	log := logger.NewServerLogger("rxpipe", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return "", err
	}

	docs, err := docstore.NewClient(ctx, log, cfg.ProjectID)
	if err != nil {
		return "", err
	}
	defer docs.Close()

	intakeCfg, err := config.LoadIntake(ctx, docs)
	if err != nil {
		return "", err
	}

	store, err := gcs.NewClient(ctx, log)
	if err != nil {
		return "", err
	}

	password, _ := helper.GetEnvVar(constants.EnvVarSftpPassword, false)
	keyPath, _ := helper.GetEnvVar(constants.EnvVarSftpKeyPath, false)
	transfer, err := sftp.NewClient(sftp.Config{
		Log:            log,
		Host:           intakeCfg.SftpHost,
		Username:       intakeCfg.SftpUsername,
		Password:       password,
		PrivateKeyPath: keyPath,
	})
	if err != nil {
		return "", err
	}

	status, report, err := intake.Run(ctx, &intake.Config{
		Log:        log,
		Transfer:   transfer,
		Store:      store,
		Bucket:     intakeCfg.Bucket,
		RemotePath: intakeCfg.SftpRemotePath,
	})
	if err != nil {
		return "", err
	}
	log.Info("mailbox fetch ", report.RunID, " finished with status: ", status)
	return status, nil
}
