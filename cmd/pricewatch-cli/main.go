package main

import (
	"context"
	"pricewatch-backend/cmd/pricewatch-cli/commands"
	"pricewatch-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
