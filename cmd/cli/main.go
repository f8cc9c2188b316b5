package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crucial707/inventory/cmd/cli/admin"
	"github.com/crucial707/inventory/cmd/cli/assets"
	"github.com/crucial707/inventory/cmd/cli/collaborators"
	"github.com/crucial707/inventory/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	assets.InitAssets(rootCmd)
	collaborators.InitCollaborators(rootCmd)
	admin.InitAdmin(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
