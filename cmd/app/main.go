package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdcgo/collection_service"
	"github.com/pdcgo/collection_service/config"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/pdcgo/shared/pkg/cloud_logging"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	_ "time/tzdata"
)

func withCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Connect-Protocol-Version, Referer, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "HEAD,PATCH,OPTIONS,GET,POST,PUT,DELETE")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type App struct {
	Run func(ctx context.Context) error
}

func NewApp(
	cfg *config.Config,
	mux *http.ServeMux,
	collectionRegister collection_service.RegisterHandler,
	scheduler *reconcile.Scheduler,
) *App {
	return &App{
		Run: func(ctx context.Context) error {
			collectionRegister()

			go func() {
				err := scheduler.Run(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					slog.Error(err.Error())
				}
			}()

			listen := cfg.Listen()
			log.Println("listening on", listen)

			srv := &http.Server{
				Addr: listen,
				// Use h2c so we can serve HTTP/2 without TLS.
				Handler: h2c.NewHandler(
					withCors(mux),
					&http2.Server{}),
			}

			go func() {
				<-ctx.Done()
				srv.Shutdown(context.Background())
			}()

			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
}

func main() {
	cloud_logging.SetCloudLoggingDefault()

	cfg, err := config.Load(os.Getenv("COLLECTOR_CONFIG"))
	if err != nil {
		panic(err)
	}

	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.Run(ctx)
	if err != nil {
		panic(err)
	}
}
