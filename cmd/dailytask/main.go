package main

import "dailytask/cmd/dailytask/root"

func main() {
	root.Execute()
}
