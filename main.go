package main

import "github.com/notelab/livemark/cmd"

func main() {
	cmd.Execute()
}
