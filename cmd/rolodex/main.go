// Package main is the entry point for the rolodex server.
package main

import (
	"os"

	"github.com/authfold/rolodex/cmd/rolodex/app"
	"github.com/authfold/rolodex/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
