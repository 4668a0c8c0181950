package main

import "github.com/chrisdamba/tripsim/cmd"

func main() {
	cmd.Execute()
}
