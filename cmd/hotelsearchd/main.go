package main

import (
	"context"
	"log/slog"
	"time"

	"travelhost-backend/lib/configutil"
	configlibsql "travelhost-backend/lib/configutil/libsql"
	"travelhost-backend/lib/osutil"
	resultdb "travelhost-backend/lib/resultstore/db"
	"travelhost-backend/lib/resultstore"
	sessiondb "travelhost-backend/lib/sessionstore/db"
	"travelhost-backend/lib/sessionstore"
	"travelhost-backend/lib/telemetry"
	"travelhost-backend/services/hotelsearch"
)

type Config struct {
	Database configlibsql.Struct `json:"database"`
	// base url of the host's login origin
	LoginBaseUrl string `json:"login_base_url"`
	// base url of the application origin the login redirects into
	AppBaseUrl string `json:"app_base_url"`
	// hours a persisted login session stays valid
	SessionTTLHours int `json:"session_ttl_hours"`
	// cached results older than this many days get evicted
	CacheMaxAgeDays int `json:"cache_max_age_days"`
	Port            int `json:"port"`
}

func maintenanceLoop(ctx context.Context, svc hotelsearch.Service, maxAgeDays int) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		evicted, err := svc.EvictCache(ctx, maxAgeDays)
		if err != nil {
			slog.Error("failed to evict stale cached results", "err", err)
		} else if evicted > 0 {
			slog.Info("evicted stale cached results", "hotels", evicted)
		}

		swept, err := svc.CleanupSessions(ctx)
		if err != nil {
			slog.Error("failed to sweep expired sessions", "err", err)
		} else if swept > 0 {
			slog.Info("swept expired sessions", "sessions", swept)
		}
	}
}

func main() {
	ctx := osutil.SignalContext()
	telemetry.InitSlog(false)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}
	if config.SessionTTLHours <= 0 {
		config.SessionTTLHours = 12
	}
	if config.CacheMaxAgeDays <= 0 {
		config.CacheMaxAgeDays = 3
	}
	if config.Port == 0 {
		config.Port = 8455
	}

	db, err := config.Database.OpenDB()
	if err != nil {
		osutil.Fatal("failed to open database", err)
	}
	defer db.Close()
	for _, schema := range []string{sessiondb.Schema, resultdb.Schema} {
		_, err = db.Exec(schema)
		if err != nil {
			osutil.Fatal("failed to apply schema", err)
		}
	}

	err = telemetry.SetupFromEnv(ctx, "hotelsearchd")
	if err != nil {
		osutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	svc := hotelsearch.NewService(hotelsearch.Options{
		LoginBaseUrl: config.LoginBaseUrl,
		AppBaseUrl:   config.AppBaseUrl,
		SessionTTL:   time.Hour * time.Duration(config.SessionTTLHours),
		Results:      resultstore.NewStore(db),
		Sessions:     sessionstore.NewStore(db),
	})

	go maintenanceLoop(ctx, svc, config.CacheMaxAgeDays)
	go osutil.StartHttpServer(config.Port, newMux(svc))

	slog.Info("hotelsearchd running",
		"login", config.LoginBaseUrl,
		"app", config.AppBaseUrl,
		"cache_max_age_days", config.CacheMaxAgeDays)
	<-ctx.Done()
}
