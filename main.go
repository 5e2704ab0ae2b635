package main

import "github.com/obsidianfr/intranet/cmd"

func main() {
	cmd.Execute()
}
