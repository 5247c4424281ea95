package main

import "github.com/mvp-joe/docsync/internal/cli"

func main() {
	cli.Execute()
}
