package main

import "github.com/Ramzibenchaabane/illumio-monitoring-tool/cmd"

func main() {
	cmd.Execute()
}
