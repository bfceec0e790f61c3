package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"slotbook/internal/database"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type SessionsConfig struct {
	Sessions []models.Session `yaml:"sessions"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		sessionsPath = flag.String("sessions", "configs/sessions.yaml", "path to sessions.yaml")
		dbPath       = flag.String("db", "./data/slotbook.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*sessionsPath)
	if err != nil {
		return fmt.Errorf("read sessions: %w", err)
	}
	var cfg SessionsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse sessions: %w", err)
	}
	if len(cfg.Sessions) == 0 {
		return fmt.Errorf("no sessions in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for _, s := range cfg.Sessions {
		if s.Name == "" {
			continue
		}
		if !s.EndTime.After(s.StartTime) || s.TotalSlots <= 0 {
			return fmt.Errorf("invalid session %q: check time window and total_slots", s.Name)
		}
		session := s
		if err = db.CreateSession(ctx, &session); err != nil {
			return fmt.Errorf("create %s: %w", s.Name, err)
		}
		created++
	}

	fmt.Printf("done: created=%d\n", created)
	return nil
}
