package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/server"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
)

func main() {
	os.Exit(run(context.Background(), config.LoadConfig()))
}

// run returns the process exit code; a startup failure is 1.
func run(ctx context.Context, cfg *config.Config) int {
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("accountkeeper: startup failed: %v", err)
		return 1
	}
	app.Run(ctx)
	return 0
}
