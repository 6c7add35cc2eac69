package main

import (
	"uwcatalog/cmd/uwcatalog/commands"
	"uwcatalog/internal/components/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
