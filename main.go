package main

import "github.com/fragtion/github-release-fetcher/cmd"

func main() {
	cmd.Execute()
}
