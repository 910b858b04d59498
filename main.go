package main

import (
	"fmt"
	"os"

	"github.com/firefly-engineering/skill-quiver/cmd"
	"github.com/firefly-engineering/skill-quiver/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(errors.GetExitCode(err))
	}
}
