// Command api runs the La Cocina del Patito backend: recipe storage,
// the public recipe feed, profile management, and the AI chef relay.
package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/infrastructure/container"
)

func main() {
	cfg, err := config.Load(os.Getenv("COCINA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(cfg),
		container.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)

	app.Run()
}
