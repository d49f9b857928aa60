package main

import (
	"os"

	"fingrid/internal/cli"
	"fingrid/internal/version"
)

func main() {
	cli.SetVersion(version.Version, version.GitCommit, version.BuildTime)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
