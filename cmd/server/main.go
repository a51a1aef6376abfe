package main

import "github.com/Brownie44l1/vision-api/internal/cli"

func main() {
	cli.Execute()
}
