package main

import (
	"os"

	"github.com/naderih/Market-Risk-Dynamic-Hedging/cmd/hedgesim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
