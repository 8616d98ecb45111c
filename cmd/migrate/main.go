package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/optitask/backend/internal/store"
	"github.com/optitask/backend/internal/store/config"
)

// command returns the trailing migration verb, defaulting to "up".
func command() string {
	if len(os.Args) < 2 {
		return store.CommandUp
	}
	last := os.Args[len(os.Args)-1]
	switch {
	case strings.HasPrefix(last, "-"):
		return store.CommandUp
	case last == store.CommandUp, last == store.CommandDown, last == store.CommandStatus:
		return last
	default:
		return store.CommandUp
	}
}

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := store.NewApp(cfg)

	if err := app.Run(ctx, command()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
