package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zulandar/groundwork/internal/api"
	"github.com/zulandar/groundwork/internal/config"
	"github.com/zulandar/groundwork/internal/report"
	"github.com/zulandar/groundwork/internal/schedule"
	"github.com/zulandar/groundwork/internal/store"
)

const defaultConfigPath = "groundwork.yaml"

// connectFromConfig loads the config and opens the task store it names.
func connectFromConfig(configPath string) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// openSource returns where read-only commands fetch the project from: the
// REST server when remote is set, the local store otherwise. The returned
// func releases the source.
func openSource(configPath string, remote bool) (*config.Config, report.Source, func(), error) {
	if !remote {
		cfg, st, err := connectFromConfig(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return cfg, st, func() { st.Close() }, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, nil, nil, fmt.Errorf("--remote requires api.base_url in %s", configPath)
	}
	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		Timeout:   cfg.API.Timeout,
		UserAgent: "gw/" + Version,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, client, func() {}, nil
}

// reportOptions derives aggregation and risk settings from the config.
func reportOptions(cfg *config.Config) (report.Options, error) {
	policy, err := schedule.ParsePolicy(cfg.Schedule.Aggregation)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Policy:         policy,
		Clock:          schedule.SystemClock{Location: cfg.Location()},
		StaleAfterDays: cfg.Schedule.StaleAfterDays,
	}, nil
}

// loadReport opens the configured source and builds the project report.
func loadReport(ctx context.Context, configPath string, remote bool) (*config.Config, *report.Project, error) {
	cfg, src, closeSrc, err := openSource(configPath, remote)
	if err != nil {
		return nil, nil, err
	}
	defer closeSrc()

	opts, err := reportOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := report.Build(ctx, src, cfg.ProjectID, opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// optionalID maps the zero flag value to nil.
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
