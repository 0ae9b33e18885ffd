// Command dropoff is the courier-side reporter: it acquires the current
// position and submits it as a drop-off location.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/99minutos/dropoff-location/internal/core/ports"
	"github.com/99minutos/dropoff-location/internal/core/service"
	"github.com/99minutos/dropoff-location/internal/infrastructure/db/dynamo"
	mongodb "github.com/99minutos/dropoff-location/internal/infrastructure/db/mongo"
	"github.com/99minutos/dropoff-location/internal/infrastructure/geolocation"
	"github.com/99minutos/dropoff-location/internal/infrastructure/persistence/httpapi"
	"github.com/99minutos/dropoff-location/internal/pkg/config"
	"github.com/99minutos/dropoff-location/pkg/logger"
)

const drainInterval = 20 * time.Millisecond

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadReporter(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Output:  os.Stderr,
		Service: "dropoff",
	})

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("reporter stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ReporterConfig, in io.Reader, out io.Writer) error {
	log := logger.Component("reporter")

	geo, closeGeo, err := geolocation.New(cfg.Geolocation)
	if err != nil {
		return err
	}
	defer closeGeo.Close()
	if geo == nil {
		log.Warn().Msg("no geolocation provider configured")
	}

	writer, closeWriter, err := newWriter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeWriter()

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	con := newConsole(out)
	reporter := service.NewReporter(geo, writer, service.ReporterOptions{
		AcquireTimeout:   cfg.Geolocation.Timeout,
		FeedbackLifetime: cfg.FeedbackLifetime,
		LowAccuracy:      !cfg.Geolocation.HighAccuracy,
		OnChange:         con.Render,
	}, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- reporter.Run(ctx) }()

	snap, err := reporter.Snapshot(ctx)
	if err != nil {
		return err
	}
	con.Render(snap)
	con.printf("%s", helpText)

	go func() {
		readCommands(ctx, in, reporter, con)
		drain(ctx, reporter)
		cancel()
	}()

	return <-errc
}

// readCommands feeds stdin lines to the reporter until EOF or "q".
func readCommands(ctx context.Context, in io.Reader, r *service.Reporter, con *console) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		var err error
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "":
			err = r.Submit(ctx)
		case "r":
			err = r.RequestLocation(ctx)
		case "a":
			err = r.Arm(ctx)
		case "d":
			err = r.Dismiss(ctx)
		case "q", "quit", "exit":
			return
		default:
			con.printf("%s", helpText)
		}
		if err != nil {
			return
		}
	}
}

// drain blocks until no acquisition is pending and no write is in flight,
// so input ending right after a submit still reaches the store.
func drain(ctx context.Context, r *service.Reporter) {
	tick := time.NewTicker(drainInterval)
	defer tick.Stop()

	for {
		s, err := r.Snapshot(ctx)
		if err != nil || !s.Busy() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

// newWriter builds the persistence collaborator for cfg.Backend. The
// returned func releases its connections.
func newWriter(ctx context.Context, cfg *config.ReporterConfig, log zerolog.Logger) (ports.LocationWriter, func(), error) {
	switch cfg.Backend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "dropoff",
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return service.NewStoreWriter(mongodb.NewLocationRepository(db), log), closeFn, nil

	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region: cfg.DynamoDB.Region,
			Table:  cfg.DynamoDB.Table,
		})
		if err != nil {
			return nil, nil, err
		}
		return service.NewStoreWriter(dynamo.NewLocationRepository(client, cfg.DynamoDB.Table), log), func() {}, nil

	default:
		return httpapi.NewClient(cfg.API.URL, cfg.API.Timeout), func() {}, nil
	}
}

func serveMetrics(ctx context.Context, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
}
