package main

import "github.com/popuptinybar/tinybar/cmd"

func main() {
	cmd.Execute()
}
