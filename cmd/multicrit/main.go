package main

import "github.com/ssargent/multicrit/cmd/multicrit/cmd"

func main() {
	cmd.Execute()
}
