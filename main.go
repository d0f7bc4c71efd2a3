package main

import (
	"ingestmon/cmd"
	"os"
)

func main() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "watch")
	}
	cmd.Execute()
}
