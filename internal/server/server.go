package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/skandula/ragserve/internal/adapter/utils"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/middleware"
	"github.com/skandula/ragserve/pkg/logx"
)

var (
	server  *http.Server
	_logger *logx.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logx.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Post("/documents/upload", middleware.UploadDocumentHandler)
	r.Router.Get("/documents/info", middleware.CollectionInfoHandler)
	r.Router.Delete("/documents/collection", middleware.DeleteCollectionHandler)
	r.Router.Post("/query", middleware.QueryHandler)
	r.Router.Get("/queries/{id}", middleware.GetQueryRecordHandler)
	r.Router.Get("/healthz", middleware.HealthHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
