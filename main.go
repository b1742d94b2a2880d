package main

import "github.com/chew-z/screenshot-translator/cmd"

func main() {
	cmd.Execute()
}
