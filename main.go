package main

import "github.com/fakeyudi/postreview/cmd"

func main() {
	cmd.Execute()
}
