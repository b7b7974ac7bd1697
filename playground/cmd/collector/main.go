package main

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/scoutlabs/scout-go/playground/collector"
)

func main() {
	configPath := pflag.String("config", "", "path to YAML config file")
	listen := pflag.String("listen", "", "listen address (overrides config)")
	databasePath := pflag.String("db", "", "sqlite database path (overrides config)")
	pflag.Parse()

	config := collector.DefaultConfig()
	if *configPath != "" {
		loaded, err := collector.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		config = loaded
	}
	if *listen != "" {
		config.Listen = *listen
	}
	if *databasePath != "" {
		config.DatabasePath = *databasePath
	}

	store, err := collector.NewStore(config.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	server := collector.NewServer(store, config.Listen)
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
