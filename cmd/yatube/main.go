package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"yatube/internal/wire"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app, cleanup, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        app.HTTP,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		app.Log.Info("http server starting", "addr", server.Addr, "environment", app.Config.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	if port := app.Config.Server.GRPCPort; port != "" {
		lis, err := net.Listen("tcp", ":"+port)
		if err != nil {
			app.Log.Error("failed to listen for grpc", "port", port, "error", err)
			os.Exit(1)
		}
		go func() {
			app.Log.Info("grpc health server starting", "port", port)
			if err := app.GRPC.Serve(lis); err != nil {
				app.Log.Error("grpc server failed", "error", err)
			}
		}()
		go app.GRPC.Watch(ctx, 15*time.Second)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("shutting down")
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if app.Config.Server.GRPCPort != "" {
		app.GRPC.GracefulStop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Log.Error("server forced to shutdown", "error", err)
	}
	app.Log.Info("server gracefully stopped")
}
