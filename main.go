package main

import "github.com/crystaldolphin/buswriter/cmd"

func main() {
	cmd.Execute()
}
