package main

import "github.com/MichaelAyles/tokn/cmd/tokn/cmd"

func main() {
	cmd.Execute()
}
