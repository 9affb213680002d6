package main

import "github.com/jmcleod/graphgate/cmd/graphgate/cmd"

func main() {
	cmd.Execute()
}
