package cmd

import (
	"fmt"

	"QuantPicker/internal/server"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		ctx, cancel := signalContext()
		defer cancel()

		col, err := newCollector(cfg)
		if err != nil {
			return err
		}
		rec := openRecorder(cfg)
		defer rec.Close()

		srv := server.New(col, newUniverse(cfg, ""), rec, cfg.DataSource.Days, cfg.Universe.Limit)
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
}
