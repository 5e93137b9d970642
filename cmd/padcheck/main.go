package main

import "github.com/OpenTraceLab/padcheck/cmd/padcheck/cmd"

func main() {
	cmd.Execute()
}
