package main

import "github.com/terraflow-cfd/terraflow/cmd"

func main() {
	cmd.Execute()
}
