package cmd

import (
	"net"

	"github.com/spf13/cobra"
	"github.com/theranica/rxpipe/actions"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service exposing the fetch and process triggers",
	Long:  `Start a web service exposing the fetch and process triggers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.LogLevel = logLevel
		serveConfig.ProjectID = resolveProjectID()
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	Addr: net.IP{0, 0, 0, 0},
	Port: 8080,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	serveCmd.Flags().IntVar(&serveConfig.Port, "port", 8080, "Port to listen on")
}
