package main

import "github.com/OpenTraceLab/spiceflat/cmd/spiceflat/cmd"

func main() {
	cmd.Execute()
}
