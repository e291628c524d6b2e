package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/imkarma/taskboard/internal/predict"
	"github.com/imkarma/taskboard/internal/server"
	"github.com/imkarma/taskboard/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bundled task store",
	Long:  "Serves the task store HTTP API over a local sqlite database until interrupted.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = c.Server.Addr
	}

	if err := os.MkdirAll(filepath.Dir(c.Server.DBPath), 0755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	st, err := store.New(c.Server.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := predict.New(c.Predictor)
	if err != nil {
		return err
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(st, p, server.Config{
		Addr:        addr,
		DueSoonDays: c.Server.DueSoonDays,
		Logger:      logger,
	})
	return srv.Run(ctx)
}
