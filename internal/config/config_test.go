package config

import "testing"

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Reporting.Mode != "live" || cfg.Reporting.Strategy != StrategyDirect {
		t.Fatalf("reporting defaults = %+v", cfg.Reporting)
	}
	if cfg.Reporting.RowLimit != 500 || cfg.Reporting.HistorySize != 100 {
		t.Fatalf("reporting defaults = %+v", cfg.Reporting)
	}
	if cfg.Database.Port != 5432 || cfg.Database.PoolSize != 10 {
		t.Fatalf("database defaults = %+v", cfg.Database)
	}
}
