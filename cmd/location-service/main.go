package main

import (
	"context"
	"github.com/ssherwood/locationservices/internal/app"
	"github.com/ssherwood/locationservices/internal/config"
	"log/slog"
	"os"
)

func main() {
	locationApp := &app.LocationApplication{}

	if err := locationApp.Initialize(context.Background()); err != nil {
		slog.Error("Failed to initialize application", config.ErrAttr(err))
		_ = locationApp.Shutdown(context.Background())
		os.Exit(1)
	}

	locationApp.Run()
}
