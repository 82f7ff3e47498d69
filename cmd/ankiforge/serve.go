package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kpauljoseph/ankiforge/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.RequireAI(); err != nil {
			log.Warn("Card generation will fail: %v", err)
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(newGenerator(), newAnkiClient(), log,
			server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
			server.WithGenerateDefaults(cfg.GenerateOptions()),
		)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
