package main

import "go-lyred/cmd"

func main() {
	cmd.Execute()
}
