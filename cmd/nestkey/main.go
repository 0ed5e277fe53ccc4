package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/nestkey/internal/buildinfo"
	"github.com/dmitrijs2005/nestkey/internal/client/cli"
	"github.com/dmitrijs2005/nestkey/internal/client/config"
)

func main() {

	buildinfo.Print(os.Stdout, "nestkey")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
