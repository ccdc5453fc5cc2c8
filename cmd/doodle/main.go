package main

import "os"

func main() {
	if err := ParseAndRun(); err != nil {
		os.Exit(1)
	}
}
