package main

import (
	"os"

	"github.com/solatis/wayfinder/cmd/wayfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
