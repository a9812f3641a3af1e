//go:build cli
// +build cli

package main

import (
	"orderdesk/cmd"
	"orderdesk/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
