package main

import (
	"context"
	"fmt"
	"log"
	"membership-dashboard/app/cli/handlers"
	"membership-dashboard/app/cli/inits"
	serverinits "membership-dashboard/app/server/inits"
	"membership-dashboard/app/server/profiles"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// config
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// logger
	l, err := serverinits.Logger(!cfg.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer l.Sync()

	// database
	db, err := serverinits.DB(cfg.DBConnectionString)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing DB connection: %w", err))
	}

	// redis
	rdb, err := serverinits.Redis(cfg.RedisConnectionString)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing Redis connection: %w", err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlerApp := handlers.NewApp(l.Named("cli"), profiles.New(l.Named("profiles"), db, rdb))
	if err := handlerApp.Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
