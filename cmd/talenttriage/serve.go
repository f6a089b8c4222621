package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/austenknu/TalentTriage/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake API server",
	Long:  "Start the HTTP server that accepts job descriptions and resume uploads and exposes upload status and candidate rankings.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.cfg.Port, a.store, a.blobs, a.queue, a.log)
	return srv.Start()
}
