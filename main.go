package main

import "github.com/dmendozad/tableros-vpo/cmd"

func main() {
	cmd.Execute()
}
