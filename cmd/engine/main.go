package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"reminderengine/internal/app"
	"reminderengine/internal/app/consumers"
	"reminderengine/internal/app/deps"
	"reminderengine/internal/app/services"
	"reminderengine/internal/core/engine"
	"syscall"

	dl "reminderengine/internal/core/domain/logging"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	services := services.InitServices(deps)

	eng := app.InitEngine(deps, services)
	if err := eng.Start(context.Background()); err != nil {
		deps.Logger.Error(context.Background(), "Could not start engine.", dl.Entry("err", err))
		panic(err)
	}
	shutdownConsumers := consumers.InitConsumers(deps, services)

	httpServer := app.InitHttpServer(deps, eng)
	go start(httpServer, deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	shutdown(context.Background(), httpServer, eng, deps, func() {
		shutdownConsumers()
		shutdownDeps()
	})
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}

func start(server *http.Server, deps *deps.Deps) {
	deps.Logger.Info(
		context.Background(),
		"HTTP server has started.",
		dl.Entry("address", server.Addr),
		dl.Entry("owner", deps.Owner),
		dl.Entry("detectorPeriod", deps.Config.DetectorPeriod.String()),
		dl.Entry("detectorWindow", deps.Config.DetectorWindow.String()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	} else {
		deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
	}
}

func shutdown(
	ctx context.Context,
	server *http.Server,
	eng *engine.Engine,
	deps *deps.Deps,
	shutDownDeps func(),
) {
	ctx, cancel := context.WithTimeout(ctx, deps.Config.ShutdownTimeout)
	defer cancel()

	// SSE streams never end on their own.
	deps.SseServer.Close()
	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error(ctx, "HTTP server did not shut down cleanly.", dl.Entry("err", err))
	}
	if err := eng.Stop(ctx); err != nil {
		deps.Logger.Error(ctx, "Engine did not stop cleanly.", dl.Entry("err", err))
	}

	shutDownDeps()
}
