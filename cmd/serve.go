package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /api/generate for a local front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("validate")

		svcCfg := lessons.DefaultConfig()
		svcCfg.Strict = strict
		a, err := newApp(cmd, svcCfg)
		if err != nil {
			return err
		}
		defer a.close()

		port := a.v.GetInt(keyPort)
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.New(a.service, a.log).Run(ctx, fmt.Sprintf(":%d", port))
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", defaultPort, "Listen port (overrides LOCAL_API_PORT)")
	serveCmd.Flags().Bool("validate", false, "Reject lesson sets that fail schema validation")
}
