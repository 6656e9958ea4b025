package main

import "github.com/0xcro3dile/courserag/internal/cli"

func main() {
	cli.Execute()
}
