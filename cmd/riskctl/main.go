package main

import (
	"os"

	"github.com/simaogato/etfguard-backend/cmd/riskctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
