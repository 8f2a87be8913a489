package main

import "github.com/josephlewis42/simshell/cmd"

func main() {
	cmd.Execute()
}
