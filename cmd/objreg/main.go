package main

import "github.com/objectregistry/cmd/objreg/cmd"

func main() {
	cmd.Execute()
}
