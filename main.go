package main

import (
	"os"

	"github.com/tariqmb/rudud/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
