package main

import "tubetap/cmd"

func main() {
	cmd.Execute()
}
