package main

import "github.com/scalevision/scaleread/cmd/scaleread/cmd"

func main() {
	cmd.Execute()
}
