package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/procure/pkg/interfaces/cli/commands"
)

func main() {
	cmd := commands.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
