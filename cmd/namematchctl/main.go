package main

import (
	"os"

	"github.com/wallarm/namematch/cmd/namematchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
