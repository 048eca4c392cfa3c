package main

import (
	"os"

	"geepr/internal/cli"
	"geepr/internal/systemcodes"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(systemcodes.ErrorCodeUsage)
	}
}
