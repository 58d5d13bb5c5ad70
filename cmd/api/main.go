package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jun/vidkeeper/internal/app"
	"github.com/jun/vidkeeper/internal/config"
	"github.com/jun/vidkeeper/internal/logger"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		l := logger.Setup(false)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Setup(cfg.DevMode)

	application, err := app.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise app")
	}

	lambda.Start(application.HandleRequest)
}
