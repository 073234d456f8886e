package main

import (
	"perch/cmd"
)

func main() {
	cmd.Execute()
}
