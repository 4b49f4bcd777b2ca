package main

import "github.com/matteuzdev/VerbAI-Studio/internal/cli"

func main() {
	cli.Execute()
}
