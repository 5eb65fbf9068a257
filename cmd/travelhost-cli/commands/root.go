package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"travelhost-backend/lib/configutil"
	configlibsql "travelhost-backend/lib/configutil/libsql"
	"travelhost-backend/lib/osutil"
	"travelhost-backend/lib/resultstore"
	resultdb "travelhost-backend/lib/resultstore/db"
	"travelhost-backend/lib/scrapers/travelhost"
	"travelhost-backend/lib/sessionstore"
	sessiondb "travelhost-backend/lib/sessionstore/db"
	"travelhost-backend/services/hotelsearch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "travelhost-cli",
	Short: "travelhost-cli runs hotel searches and inspects the local caches.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Database configlibsql.Struct `json:"database"`
	// base url of the host's login origin
	LoginBaseUrl string `json:"login_base_url"`
	// base url of the application origin
	AppBaseUrl string `json:"app_base_url"`
	TenantId   string `json:"tenant_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func setup() (hotelsearch.Service, travelhost.Credentials) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		osutil.Fatal("failed to read config", err)
	}

	db, err := cfg.Database.OpenDB()
	if err != nil {
		osutil.Fatal("failed to open database", err)
	}
	for _, schema := range []string{sessiondb.Schema, resultdb.Schema} {
		_, err = db.Exec(schema)
		if err != nil {
			osutil.Fatal("failed to apply schema", err)
		}
	}

	svc := hotelsearch.NewService(hotelsearch.Options{
		LoginBaseUrl: cfg.LoginBaseUrl,
		AppBaseUrl:   cfg.AppBaseUrl,
		SessionTTL:   time.Hour * 12,
		Results:      resultstore.NewStore(db),
		Sessions:     sessionstore.NewStore(db),
	})
	return svc, travelhost.Credentials{
		TenantId: cfg.TenantId,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
