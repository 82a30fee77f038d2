package main

import "github.com/vietddude/tracer/internal/cli"

func main() {
	cli.Execute()
}
