package main

import "github.com/bitvelocity/gatekeeper/cmd/gatekeeper/cmd"

func main() {
	cmd.Execute()
}
