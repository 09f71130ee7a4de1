package main

import "github.com/guaranteeops/reconbot/cmd"

func main() {
	cmd.Execute()
}
