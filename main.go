package main

import "github.com/KaramelBytes/smartbiz-cli/cmd"

func main() {
	cmd.Execute()
}
