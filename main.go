package main

import "vault/cmd"

func main() {
	cmd.Execute()
}
