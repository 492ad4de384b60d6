package main

import (
	"context"
	"log"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
