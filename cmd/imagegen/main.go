package main

import "imagerelay/cmd/imagegen/commands"

func main() {
	commands.Execute()
}
