package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"daytriage/version"
)

const EnvPrefix = "DAYTRIAGE"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token        secret.String
	AnthropicKey secret.String

	DBPath string

	TickInterval time.Duration
	WakeUpHour   int
	BedtimeHour  int
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info | warn | error).")
	token := flag.String("token", "", "Telegram bot token.")
	anthropicKey := flag.String("anthropic-key", "", "Anthropic API key for the task parser and rater.")
	dbPath := flag.String("db-path", "daytriage.db", "Path to sqlite database file.")
	tick := flag.Duration("tick", time.Minute, "Re-triage clock tick interval.")
	wakeUp := flag.Int("wake-up-hour", 8, "Hour before which no task is scheduled.")
	bedtime := flag.Int("bedtime-hour", 22, "Hour that ends the schedulable day.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = *logLevel
	if *logLevel == "debug" {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)
	cfg.AnthropicKey = secret.NewString(*anthropicKey)
	cfg.DBPath = *dbPath
	cfg.TickInterval = *tick
	cfg.WakeUpHour = *wakeUp
	cfg.BedtimeHour = *bedtime

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
