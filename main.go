package main

import (
	"github.com/jacow-mirror/srfcrawl/cmd"
)

func main() {
	cmd.Execute()
}
