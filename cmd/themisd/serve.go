package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	themisgrpc "github.com/blockberries/themis/grpc"
	"github.com/blockberries/themis/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the oracle scripts over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Server.ListenAddress
			}
			return a.serve(listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen_address)")
	return cmd
}

func (a *app) serve(listen string) error {
	srv, err := server.New(a.logger, a.registry()...)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}

	gs := grpc.NewServer()
	themisgrpc.NewGRPCServer(srv).Register(gs)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		sig := <-sigs
		a.logger.Info("Shutting down", zap.String("signal", sig.String()))
		gs.GracefulStop()
	}()

	a.logger.Info("Serving oracle scripts",
		zap.String("address", lis.Addr().String()),
		zap.Int("scripts", len(a.scripts)))
	return gs.Serve(lis)
}
