package main

import "github.com/TesterNaN/ccmz2mid/cmd"

func main() {
	cmd.Execute()
}
