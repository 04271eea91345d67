package main

import (
	"context"
	"log"
	"os"

	"github.com/novalis78/keykeeper/internal/buildinfo"
	"github.com/novalis78/keykeeper/internal/cli"
	"github.com/novalis78/keykeeper/internal/config"
	"github.com/novalis78/keykeeper/internal/flagx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	args := flagx.ExcludeArgs(os.Args[1:], config.ConfigFlags)
	if err := app.Run(ctx, args); err != nil {
		log.Fatalf("%v", err)
	}
}
