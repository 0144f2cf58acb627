package main

import (
	"os"

	"github.com/hedgeshield/riskdesk/cmd/riskdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
