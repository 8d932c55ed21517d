package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"fieldroute/internal/cli"
	"fieldroute/internal/config"
	"fieldroute/internal/logging"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" env:"FIELDROUTE_CONFIG"`
	Log     string `help:"Log level (debug, info, warn, error)." default:"info"`

	Plan   cli.PlanCmd   `cmd:"" help:"Solve a plan request from a JSON file."`
	Matrix cli.MatrixCmd `cmd:"" help:"Print the distance matrix for a plan request."`
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("fieldroute"),
		kong.Description("Field service route planner"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Log != "" {
		cfg.LogLevel = CLI.Log
	}

	appCtx := &cli.Context{
		Cfg: cfg,
		Log: logging.New(logging.Config{Level: cfg.LogLevel, Service: "fieldroute-cli", Output: os.Stderr}),
	}
	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
