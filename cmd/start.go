package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault/domain"
	"vault/interface/api"
	"vault/interface/exporter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the vault keeper",
	Long: `Starts the vault keeper: strategies are reconciled on the configured
rebase schedule and the vault views and metrics are served over HTTP.
Stop it with SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter.Init()

		if err := defaultDependencyInject(); err != nil {
			return err
		}
		defer closeDependencies()

		if err := keeperInteractor.Schedule(domain.GetRebaseCron()); err != nil {
			return err
		}
		keeperInteractor.Start()

		server := &http.Server{
			Addr:              domain.GetMetricsAddress(),
			Handler:           api.NewRouter(vaultInteractor, journalInteractor),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("🔵 serving vault views on %v", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("🔴 http server - %v", err.Error())
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Printf("Got signal '%v', stopping", s)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("🔴 http server shutdown - %v", err.Error())
		}

		// Every keeper run saves its own result, and anything else in memory
		// may be older than the saved vault.
		keeperInteractor.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
