package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/onchainnft/nftcreator/metrics"
	"github.com/onchainnft/nftcreator/rpc"
)

var servePreview string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the forms over JSON-RPC and metrics over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var opts []rpc.Option
		if servePreview != "" {
			opts = append(opts, rpc.WithPreview(helixFile(servePreview)))
		}

		srv := rpc.NewServer(a.session, opts...)

		if err := a.session.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("initial listing failed")
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return srv.ListenAndServe(ctx, cfg.RPC.Listen, cfg.Chain.ReceiptTimeout+30*time.Second)
		})

		if cfg.Metrics.Listen != "" {
			g.Go(func() error {
				return serveMetrics(ctx, cfg.Metrics.Listen)
			})
		}

		return g.Wait()
	},
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info().Str("addr", addr).Msg("metrics listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func init() {
	serveCmd.Flags().StringVar(&servePreview, "preview", "", "write the template preview svg here on every hue change")

	rootCmd.AddCommand(serveCmd)
}
