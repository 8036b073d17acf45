package main

import "github.com/zephyros1603/urbanup/cmd"

func main() {
	cmd.Execute()
}
