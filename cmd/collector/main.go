package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"NetFlowSond/internal/api"
	"NetFlowSond/internal/collector"
	"NetFlowSond/internal/config"
	"NetFlowSond/internal/diag"
	_ "NetFlowSond/internal/storage/clickhouse" // Registers the clickhouse backend
	_ "NetFlowSond/internal/storage/csvfile"    // Registers the csv backend
	_ "NetFlowSond/internal/storage/natspub"    // Registers the nats backend
	_ "NetFlowSond/internal/storage/sqldb"      // Registers the sqlite and mysql backends
)

const version = "2.1"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	checkDB := flag.Bool("checkdb", false, "Check storage reachability, provision the schema and exit")
	diagPath := flag.String("diag", "", "Enable diagnostic packet capture to the given file")
	display := flag.Bool("display", false, "Log incoming packets and their acceptance status")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("NetFlowSond collector version %s\n", version)
		return
	}

	// 1. Load and validate configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Offline storage check (-checkdb): validate and provision, then exit
	if *checkDB {
		if err := collector.CheckStorage(&cfg.Storage); err != nil {
			log.Fatalf("Storage check failed: %v", err)
		}
		log.Println("Storage check completed successfully.")
		return
	}

	// 3. Diagnostic capture file, shared by all probe listeners
	var recorder *diag.Recorder
	if *diagPath != "" {
		recorder, err = diag.NewRecorder(*diagPath)
		if err != nil {
			log.Fatalf("Failed to enable diagnostics: %v", err)
		}
		log.Printf("Diagnostic capture enabled. Writing to: %s", *diagPath)
	}

	// 4. Build the per-probe listeners and start receiving
	coll, err := collector.New(cfg, recorder, *display)
	if err != nil {
		log.Fatalf("Failed to set up collector: %v", err)
	}
	coll.Start()

	// 5. Optional status API
	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API.ListenAddr, coll)
		server.Start()
	}

	// 6. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping collector...")
	if server != nil {
		server.Stop()
	}
	coll.Stop()
	log.Println("Shutdown complete.")
}
