package main

import "github.com/internhub/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
