package main

import "club-incentives/cmd"

func main() {
	cmd.Execute()
}
