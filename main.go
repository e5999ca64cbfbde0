package main

import "github.com/KaramelBytes/nbaclean-cli/cmd"

func main() {
	cmd.Execute()
}
