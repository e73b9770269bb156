package main

import "github.com/mvp-joe/cppdoc/internal/cli"

func main() {
	cli.Execute()
}
