package main

import (
	"os"

	"n3portal/internal/config"
)

func main() {
	cfg := config.New()
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
