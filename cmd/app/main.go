package main

import (
	"flag"
	"log"

	"CurvePull/internal/di"
	"CurvePull/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one pipeline refresh and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if *once {
		if err := app.RunOnce(); err != nil {
			log.Fatalf("run: %v", err)
		}
		return
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
