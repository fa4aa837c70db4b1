package main

import (
	"github.com/gundriai/merovote-app/cmd"
)

func main() {
	cmd.Execute()
}
