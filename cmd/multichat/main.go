package main

import "github.com/deforce/multichat/cmd/multichat/cmd"

func main() {
	cmd.Execute()
}
