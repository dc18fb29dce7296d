package main

import (
	"Bt1QRadio/cmd"
)

func main() {
	cmd.Execute()
}
