package main

import (
	"os"

	"QuantPicker/cmd/quantpicker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
