// Command bgserver runs the backgammon rules API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/bgrules/internal/config"
	"github.com/yourusername/bgrules/internal/store"
	"github.com/yourusername/bgrules/pkg/api"
	"github.com/yourusername/bgrules/pkg/game"
)

const version = "0.1.0"

func main() {
	// Environment first; flags override it.
	cfg, err := config.LoadServer()
	if err != nil {
		config.Exitf("bgserver: %v", err)
	}

	host := flag.String("host", cfg.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", cfg.Port, "Port to listen on")
	dbPath := flag.String("db", cfg.DBPath, "Path to the SQLite game journal (empty = no journal)")
	readTimeout := flag.Duration("read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	fastWorkers := flag.Int("fast-workers", cfg.MaxFastWorkers, "Max concurrent game operations (0 = default)")
	slowWorkers := flag.Int("slow-workers", cfg.MaxSlowWorkers, "Max concurrent simulations (0 = default)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bgrules API Server v%s\n", version)
		os.Exit(0)
	}

	log.Printf("bgrules API Server v%s", version)

	var journal *store.Store
	if *dbPath != "" {
		journal, err = store.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer journal.Close()
		log.Printf("Journal: %s", *dbPath)
	} else {
		log.Printf("Journal disabled, games live in memory only")
	}

	server := api.NewServer(game.NewRegistry(), journal, api.ServerConfig{
		Host:           *host,
		Port:           *port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxFastWorkers: *fastWorkers,
		MaxSlowWorkers: *slowWorkers,
	}, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
