package main

import (
	"os"

	"github.com/pi22by7/sap-analytics-platform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
