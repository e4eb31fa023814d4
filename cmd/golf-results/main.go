package main

import "github.com/pfrederiksen/golf-results/internal/cli"

func main() {
	cli.Execute()
}
