package main

import "github.com/Daisy-Faith-Auma/vr-analytics-platform/cmd"

func main() {
	cmd.Execute()
}
