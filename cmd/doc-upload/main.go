// cmd/doc-upload/main.go
package main

import (
	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/docpipe/doc-upload/pkg/cli"
)

func main() {
	// Initialize logger
	logger.Init()

	// Execute CLI
	cli.Execute()
}
