package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/pucktable/internal/logger"
	"github.com/Faultbox/pucktable/internal/scene"
	"github.com/Faultbox/pucktable/internal/stream"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
		fps  int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the scene in real time and stream frames over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Stream.Addr = addr
			}
			if fps <= 0 {
				fps = 60
			}

			s, err := scene.New(cfg)
			if err != nil {
				return err
			}
			srv := stream.NewServer(cfg.Stream)
			if err := s.Loop.Start(srv, scene.NewWallClock()); err != nil {
				return err
			}
			defer s.Loop.Stop()

			logger.Sugar.Infof("streaming %d objects on ws://%s%s", s.Registry.Len(), cfg.Stream.Addr, cfg.Stream.Path)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.ListenAndServe(ctx) })
			g.Go(func() error {
				err := s.Loop.Run(ctx, time.Second/time.Duration(fps))
				if err == nil || errors.Is(err, stream.ErrClosed) {
					return context.Canceled
				}
				return err
			})
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second")
	return cmd
}
