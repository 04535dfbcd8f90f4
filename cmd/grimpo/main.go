package main

import "grimpo/cmd/grimpo/root"

func main() {
	root.Execute()
}
