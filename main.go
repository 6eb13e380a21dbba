package main

import "github.com/KaramelBytes/hypocheck/cmd"

func main() {
	cmd.Execute()
}
