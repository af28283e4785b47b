package main

import (
	"os"

	"github.com/saideep-g/blue-ninja/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
