package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Table.PS != 10 {
			t.Errorf("expected ps 10, got %d", cfg.Table.PS)
		}
		if cfg.Table.ReqRename != (grid.ReqRename{PI: "pi", PS: "ps", Sort: "sort"}) {
			t.Errorf("unexpected req rename: %+v", cfg.Table.ReqRename)
		}
		if cfg.Table.ResRename != (grid.ResRename{Total: "total", List: "list"}) {
			t.Errorf("unexpected res rename: %+v", cfg.Table.ResRename)
		}
		if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 50061 {
			t.Errorf("expected 0.0.0.0:50061, got %s:%d", cfg.Server.Host, cfg.Server.Port)
		}
		if cfg.Server.RequestTimeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Server.RequestTimeout)
		}
		if cfg.Server.MaxPageSize != 500 {
			t.Errorf("expected max_page_size 500, got %d", cfg.Server.MaxPageSize)
		}
		if cfg.HTTP.RateLimit != 0 || cfg.HTTP.Timeout != 15*time.Second {
			t.Errorf("unexpected http config: %+v", cfg.HTTP)
		}
		if cfg.Table.PageShow != grid.ShowAuto || cfg.Table.PageMode != grid.ModeAuto {
			t.Errorf("unexpected page config: %+v", cfg.Table)
		}
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("ST_SERVER_PORT", "9999")
		t.Setenv("ST_TABLE_PS", "25")
		t.Setenv("ST_TABLE_REQ_RENAME_PI", "page")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", cfg.Server.Port)
		}
		if cfg.Table.PS != 25 {
			t.Errorf("expected ps 25, got %d", cfg.Table.PS)
		}
		if cfg.Table.ReqRename.PI != "page" {
			t.Errorf("expected pi rename page, got %s", cfg.Table.ReqRename.PI)
		}
	})

	t.Run("config file", func(t *testing.T) {
		path := writeConfig(t, `table:
  ps: 20
  multi_sort: true
  multi_sort_separator: "-"
  row_key: id
  page:
    show: always
    total: "true"
    front: back
  res:
    rename:
      total: data.count
      list: data.items
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Table.PS != 20 || !cfg.Table.MultiSort || cfg.Table.MultiSortSeparator != "-" {
			t.Errorf("unexpected table config: %+v", cfg.Table)
		}
		if cfg.Table.PageShow != grid.ShowAlways || cfg.Table.PageMode != grid.ModeBack {
			t.Errorf("unexpected page config: %+v", cfg.Table)
		}
		if cfg.Table.PageTotal != types.DefaultTotalTemplate {
			t.Errorf("expected default total template, got %q", cfg.Table.PageTotal)
		}
		if cfg.Table.ResRename.Total != "data.count" {
			t.Errorf("expected total path data.count, got %s", cfg.Table.ResRename.Total)
		}
	})

	t.Run("environment overrides config file", func(t *testing.T) {
		t.Setenv("ST_TABLE_PS", "8")
		path := writeConfig(t, "table:\n  ps: 20\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Table.PS != 8 {
			t.Errorf("environment should override config file, got ps %d", cfg.Table.PS)
		}
	})

	t.Run("token from environment", func(t *testing.T) {
		t.Setenv("ST_HTTP_TOKEN", "abc")
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.HTTP.Token != "abc" {
			t.Errorf("expected token abc, got %q", cfg.HTTP.Token)
		}
	})

	t.Run("token in config file rejected", func(t *testing.T) {
		path := writeConfig(t, "http:\n  token: secret\n")
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("expected error for token in config file")
		}
		if err.Error() != "HTTP tokens not allowed in config files (use ST_HTTP_TOKEN environment variable)" {
			t.Errorf("wrong error message: %v", err)
		}
	})

	t.Run("server token from environment only", func(t *testing.T) {
		t.Setenv("ST_SERVER_TOKEN", "s3cret")
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.Token != "s3cret" {
			t.Errorf("expected server token s3cret, got %q", cfg.Server.Token)
		}

		path := writeConfig(t, "server:\n  token: s3cret\n")
		if _, err := LoadConfig(path); err == nil {
			t.Fatal("expected error for server token in config file")
		}
	})

	invalid := []struct {
		name, env, value string
	}{
		{"invalid port range", "ST_SERVER_PORT", "70000"},
		{"invalid page size", "ST_TABLE_PS", "0"},
		{"negative rate limit", "ST_HTTP_RATE_LIMIT", "-1"},
		{"unknown show mode", "ST_TABLE_PAGE_SHOW", "sometimes"},
		{"unknown page mode", "ST_TABLE_PAGE_FRONT", "middle"},
		{"non-positive max page size", "ST_SERVER_MAX_PAGE_SIZE", "0"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := LoadConfig(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.env, tt.value)
			}
		})
	}

	t.Run("missing config file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestTableConfigOptions(t *testing.T) {
	cfg := DefaultConfig().Table
	cols := []grid.Column{{Index: "id"}}

	opts := cfg.Options(cols)
	if opts.PS != 10 || opts.MultiSort != nil || len(opts.Columns) != 1 {
		t.Errorf("unexpected options: %+v", opts)
	}

	cfg.MultiSort = true
	cfg.MultiSortSeparator = "|"
	opts = cfg.Options(cols)
	if opts.MultiSort == nil || opts.MultiSort.Key != "sort" || opts.MultiSort.Separator != "|" {
		t.Errorf("unexpected multi sort: %+v", opts.MultiSort)
	}
}
