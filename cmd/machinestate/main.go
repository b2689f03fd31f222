package main

import "github.com/NVIDIA/machinestate/pkg/cli"

func main() {
	cli.Execute()
}
