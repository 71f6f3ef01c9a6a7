package main

import (
	"os"

	"github.com/tair/shopgrid/pkg/logger"
)

func main() {
	logger.Init("shopgridctl", true)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
