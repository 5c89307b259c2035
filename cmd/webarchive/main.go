package main

import "github.com/blacktop/webarchive/cmd/webarchive/cmd"

func main() {
	cmd.Execute()
}
