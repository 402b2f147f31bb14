package main

import "github.com/KaramelBytes/hospimap-cli/cmd"

func main() {
	cmd.Execute()
}
