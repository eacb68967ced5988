package main

import "github.com/nim-pymod/pmgen/cmd"

func main() {
	cmd.Execute()
}
