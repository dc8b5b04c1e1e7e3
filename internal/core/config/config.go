// Package config provides configuration management for sttable commands.
package config

import (
	"time"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

// Config is the complete runtime configuration.
type Config struct {
	DatabaseURL string
	Table       TableConfig
	Server      ServerConfig
	HTTP        HTTPConfig
}

// TableConfig holds the engine defaults applied to every table built by
// the CLI and the TableService.
type TableConfig struct {
	PS                 int
	MultiSort          bool
	MultiSortKey       string
	MultiSortSeparator string
	ReqRename          grid.ReqRename
	ResRename          grid.ResRename
	PageShow           grid.ShowMode
	PageTotal          string
	PageMode           grid.Mode
	RowKey             string
}

// ServerConfig holds configuration for the gRPC TableService.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxPageSize    int
	// Token, when set, is required as a bearer token on every call.
	// Environment only (ST_SERVER_TOKEN).
	Token string
}

// HTTPConfig holds configuration for the HTTP fetch collaborator.
type HTTPConfig struct {
	// RateLimit is the request rate in requests/second; 0 disables limiting.
	RateLimit float64
	Burst     int
	Timeout   time.Duration
	// Token is sent as a bearer token. Environment only (ST_HTTP_TOKEN).
	Token string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabaseURL: "sqlite://./data/sttable.db",
		Table: TableConfig{
			PS:           types.DefaultPageSize,
			MultiSortKey: grid.DefaultSortKey,
			PageShow:     grid.ShowAuto,
			PageMode:     grid.ModeAuto,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			RequestTimeout: 30 * time.Second,
			MaxPageSize:    500,
		},
		HTTP: HTTPConfig{
			Burst:   1,
			Timeout: 15 * time.Second,
		},
	}
}

// Options converts the table defaults to engine options over cols.
func (c TableConfig) Options(cols []grid.Column) grid.Options {
	opts := grid.Options{
		PS:      c.PS,
		Columns: cols,
		Req:     c.ReqRename,
		Res:     c.ResRename,
		RowKey:  c.RowKey,
		Page: grid.PageOptions{
			Mode:  c.PageMode,
			Show:  c.PageShow,
			Total: c.PageTotal,
		},
	}
	if c.MultiSort {
		opts.MultiSort = &grid.MultiSort{Key: c.MultiSortKey, Separator: c.MultiSortSeparator}
	}
	return opts
}
