package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/gridsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gridsim:", err)
		os.Exit(1)
	}
}
