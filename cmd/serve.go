package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hospimap-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and HTML views",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		svc, err := newService(ctx)
		if err != nil {
			return err
		}
		if caps := svc.Capabilities(); !caps.Geometry {
			fmt.Fprintf(os.Stderr, "⚠ Warning: district maps disabled: %s\n", caps.Reason)
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		fmt.Printf("Serving dashboard on %s\n", addr)
		return server.Run(ctx, server.New(svc), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default listen_addr)")
}
