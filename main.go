package main

import (
	"os"

	"github.com/finsift/finsift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
