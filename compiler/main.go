package main

import (
	"os"

	"github.com/xiaobogaga/jmm/compiler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
