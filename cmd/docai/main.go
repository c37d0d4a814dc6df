package main

import "docai/internal/cli"

func main() {
	cli.Execute()
}
