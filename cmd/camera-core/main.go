package main

import "github.com/menta2k/camera-core/cmd/camera-core/commands"

func main() {
	commands.Execute()
}
