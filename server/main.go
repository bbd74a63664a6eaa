package main

import "github.com/pgEdge/recordstore/server/cmd"

func main() {
	cmd.Execute()
}
