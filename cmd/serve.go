package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.HTTP.Addr
		}

		gin.SetMode(gin.ReleaseMode)
		h := api.NewHandler(a.svc, a.cfg.Scale(), a.log)
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		a.log.WithField("addr", addr).Info("api listening")
		fmt.Printf("Serving on http://%s\n", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			a.log.Infof("received signal: %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
