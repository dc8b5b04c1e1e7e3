package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/sttable/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored datasets over the gRPC TableService",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := setup()
	if err != nil {
		return err
	}
	cfg := rt.cfg

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	store, closeStore, err := rt.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	service, err := server.NewTableService(store, tableWire(cfg.Table), cfg.Table.ResRename, cfg.Server.MaxPageSize)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(&cfg.Server, service, rt.log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	rt.log.Info().
		Str("version", Version).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Bool("auth", cfg.Server.Token != "").
		Msg("starting sttable TableService")

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		rt.log.Info().Msg("shutting down gracefully")
		return grpcServer.Shutdown(context.Background())
	}
}
