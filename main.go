package main

import "github.com/yarlson/rusk/cmd"

func main() {
	cmd.Execute()
}
