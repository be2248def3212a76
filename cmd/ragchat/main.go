package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragchat/internal/api"
	"ragchat/internal/config"
	"ragchat/internal/events"
	"ragchat/internal/logging"
	"ragchat/internal/session"
	"ragchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log.File, cfg.Log.Debug)
	defer logger.Sync()

	client := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
	})

	bus := events.NewBus()
	conv := session.NewConversation(logger)
	insp := session.NewInspector()
	up := session.NewUpload(bus, logger)
	st := session.NewStats(bus)

	m := tui.New(client, conv, insp, up, st, cfg.Query.TopK, logger)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
