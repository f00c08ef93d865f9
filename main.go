package main

import "github.com/agentic-research/prefablink/cmd"

func main() {
	cmd.Execute()
}
