package main

import "github.com/theranica/rxpipe/cmd"

func main() {
	cmd.Execute()
}
