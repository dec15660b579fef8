package main

import (
	"context"
	"log"
	"os"

	"github.com/rvasani/lenden/internal/buildinfo"
	"github.com/rvasani/lenden/internal/cli"
	"github.com/rvasani/lenden/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
