package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theranica/rxpipe/actions"
)

var (
	processBucket string
	processObject string
)

// processCmd represents one storage-triggered feed processing run.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize one landed feed file and load it into the warehouse",
	Long: `Process downloads one landed feed file, normalizes it onto the feed's
fixed schema and appends it to the feed's staging table, then runs the post-load
refinement scripts and the append into the shared destination table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := actions.RunFeedProcess(context.Background(), &actions.ProcessConfig{
			LogLevel:         logLevel,
			ProjectID:        resolveProjectID(),
			Bucket:           processBucket,
			Object:           processObject,
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
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().SortFlags = false
	processCmd.Flags().StringVarP(&processBucket, "bucket", "b", "", "Bucket holding the landed feed file")
	processCmd.Flags().StringVarP(&processObject, "object", "o", "", "Name of the landed feed file")
	_ = processCmd.MarkFlagRequired("bucket")
	_ = processCmd.MarkFlagRequired("object")
}
