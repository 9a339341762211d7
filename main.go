package main

import "github.com/skillweaver/skillweaver/cmd"

func main() {
	cmd.Execute()
}
