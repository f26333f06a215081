package main

import "recipe-api/commands"

func main() {
	commands.Execute()
}
