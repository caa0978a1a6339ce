package main

import "github.com/valpere/justhighlight/cmd"

func main() {
	cmd.Execute()
}
