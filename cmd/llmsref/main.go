package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mfenderov/llmsref/cmd/llmsref/cmd"
	"github.com/mfenderov/llmsref/internal/summarizer"
)

// exitUnavailable signals that the summarizer could not be reached at all.
const exitUnavailable = 3

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, summarizer.ErrUnavailable) {
			os.Exit(exitUnavailable)
		}
		os.Exit(1)
	}
}
