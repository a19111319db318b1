package main

import "github.com/bz888/schedchat/cmd"

func main() {
	cmd.Execute()
}
