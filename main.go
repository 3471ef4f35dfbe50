package main

import "github.com/example/resy-notifier/cmd"

func main() {
	cmd.Execute()
}
