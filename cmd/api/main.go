package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/notify"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/utilities"
)

// httpConfig holds HTTP_* settings.
type httpConfig struct {
	Addr        string   `envconfig:"ADDR" default:"0.0.0.0:8431"`
	BasePath    string   `envconfig:"BASE_PATH"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	logCfg, err := utilities.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-user-go")

	var httpCfg httpConfig
	if err := envconfig.Process("HTTP", &httpCfg); err != nil {
		sugar.Fatalf("http config: %v", err)
	}

	// init db
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("%v", err)
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if dbCfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(migrateCtx, db.DB, "up")
		cancel()
		if err != nil {
			sugar.Fatalf("%v", err)
		}
	}

	// init welcome email queue
	queueCfg, err := notify.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("%v", err)
	}
	queue, err := notify.New(queueCfg, sugar)
	if err != nil {
		sugar.Fatalf("queue: %v", err)
	}
	defer queue.Close()
	sugar.Infow("welcome email queue ready", "driver", queueCfg.Driver)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := user.NewUserService(db, queue, sugar)
	handler := router.RegisterRoutes(sugar, db, user.NewHandler(svc, sugar), router.Options{
		BasePath:    httpCfg.BasePath,
		CORSOrigins: httpCfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", httpCfg.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
