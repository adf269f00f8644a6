package main

import "github.com/killallgit/realty/cmd"

func main() {
	cmd.Execute()
}
