package main

import "github.com/mailroom-io/mailroom/cmd"

func main() {
	cmd.Execute()
}
