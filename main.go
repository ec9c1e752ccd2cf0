package main

import "github.com/stslalabs/stswap/cmd"

func main() {
	cmd.Execute()
}
