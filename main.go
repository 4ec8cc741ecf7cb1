package main

import "github.com/nkazemy/subman/cmd"

func main() {
	cmd.Execute()
}
