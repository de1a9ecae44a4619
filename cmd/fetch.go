package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theranica/rxpipe/actions"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/helper"
)

// fetchCmd represents the scheduled mailbox fetch.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new feed files from the vendor mailbox into the landing bucket",
	Long: `Fetch connects to the vendor SFTP mailbox, filters the remote listing
for new, validly named feed files and transfers them into the landing bucket.
The SFTP password is read from ` + constants.EnvVarSftpPassword + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := actions.RunMailboxFetch(context.Background(), &actions.FetchConfig{
			LogLevel:         logLevel,
			ProjectID:        resolveProjectID(),
			StackDumpOnPanic: stackDumpOnPanic,
		})
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

// resolveProjectID prefers the --project flag over the ambient environment.
func resolveProjectID() string {
	if projectID != "" {
		return projectID
	}
	return helper.ReadValueFromEnvWithDefault(constants.EnvVarProjectID, "")
}
