package main

import (
	"context"

	"travelhost-backend/cmd/travelhost-cli/commands"
	"travelhost-backend/lib/osutil"
	"travelhost-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	err := telemetry.SetupFromEnv(context.Background(), "travelhost-cli")
	if err != nil {
		osutil.Fatal("failed to setup telemetry", err)
	}
	commands.ExecuteContext(context.Background())
}
