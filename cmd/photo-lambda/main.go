// cmd/photo-lambda/main.go
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"listing-photos/internal/api"
	"listing-photos/internal/app"
	"listing-photos/internal/common/config"
	"listing-photos/internal/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "json")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	// built once per cold start and reused across invocations
	a, err := app.Build(context.Background(), cfg, log)
	if err != nil {
		zapLog.Fatal("pipeline wiring failed", zap.Error(err))
	}
	defer a.Close()

	lambda.Start(api.NewLambdaHandler(a.Handler, log).Handle)
}
