package main

import (
	"os"

	"github.com/credisur/credisur/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
