package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/cmd"
)

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to determine working directory")
		os.Exit(1)
	}

	err = cmd.Run(cmd.Settings{
		WorkingDir: wd,
	}, os.Args[1:])

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
