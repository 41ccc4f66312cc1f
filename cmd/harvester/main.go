package main

import "github.com/gigcity/harvester/cmd/harvester/cmd"

func main() {
	cmd.Execute()
}
