package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarushai/citadel"
)

func main() {
	seed := flag.Bool("seed", false, "seed the database with the initial content set and exit")
	flag.Parse()

	cfg, err := citadel.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := citadel.New(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer app.Close()

	if *seed {
		res, err := app.Store.RunSeed(context.Background())
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seed: episodes migrated=%d skipped=%d, projects migrated=%d skipped=%d",
			res.EpisodesMigrated, res.EpisodesSkipped, res.ProjectsMigrated, res.ProjectsSkipped)
		return
	}

	if cfg.AdminToken == "" {
		log.Println("warning: ADMIN_TOKEN is not set, admin routes will refuse all requests")
	}

	go func() {
		if err := app.Start(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
