package main

import "lto-cli/cmd"

func main() {
	cmd.Execute()
}
