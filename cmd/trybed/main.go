package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/trybenetwork/trybe/api"
	"github.com/trybenetwork/trybe/contract"
	"github.com/trybenetwork/trybe/kv"
	"github.com/trybenetwork/trybe/log"
	"github.com/trybenetwork/trybe/metrics"
	"github.com/trybenetwork/trybe/trybe"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "trybed",
		Usage:   "TRYBE token contract daemon",
		Flags: []cli.Flag{
			dataDirFlag,
			contractNameFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
			disableRefundTimerFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	log.SetVerbosity(ctx.String(verbosityFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	name, err := trybe.ParseName(ctx.String(contractNameFlag.Name))
	if err != nil {
		return fmt.Errorf("contract-name: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	c, err := contract.New(store, contract.Options{
		Name:            name,
		ScheduleRefunds: !ctx.Bool(disableRefundTimerFlag.Name),
	})
	if err != nil {
		store.Close()
		return err
	}
	defer func() { logger.Info("closing contract..."); c.Close() }()

	srv, url := startAPIServer(ctx, c)
	defer func() { logger.Info("stopping API server..."); srv.Shutdown(context.Background()) }()

	logger.WithField("version", fullVersion()).
		WithField("contract", name).
		WithField("api", url).
		Info("started")

	<-handleExitSignal()
	return nil
}

func openStore(ctx *cli.Context) (*kv.LevelDB, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, fmt.Errorf("unable to resolve data directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return kv.New(filepath.Join(dir, "contract.db"), kv.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 256,
	})
}

func startAPIServer(ctx *cli.Context, c *contract.Contract) (*http.Server, string) {
	router := mux.NewRouter()
	api.New(c).Mount(router, "/v1")
	router.PathPrefix("/metrics").Handler(metrics.Handler())

	handler := handlers.CompressHandler(router)
	if cors := ctx.String(apiCorsFlag.Name); cors != "" {
		handler = handlers.CORS(
			handlers.AllowedOrigins(strings.Split(cors, ",")),
			handlers.AllowedHeaders([]string{"content-type", api.ActorHeader, api.PermissionHeader}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		)(handler)
	}

	addr := ctx.String(apiAddrFlag.Name)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.LoggingHandler(os.Stdout, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("API server stopped")
		}
	}()
	return srv, "http://" + addr + "/v1"
}

func handleExitSignal() chan os.Signal {
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	return exit
}
