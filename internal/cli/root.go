// Package cli implements the fieldroute command line: offline plan
// solving and distance matrix inspection over JSON files.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"fieldroute/internal/api/dto"
	"fieldroute/internal/config"
)

// Context carries shared dependencies into every subcommand.
type Context struct {
	Cfg config.Config
	Log *slog.Logger
}

func readPlanRequest(path string) (dto.PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.PlanRequest{}, fmt.Errorf("read %s: %w", path, err)
	}
	var req dto.PlanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return dto.PlanRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

func writeOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
