package main

import "github.com/dkovalev/pdfext-kit/cmd/pdfext-kit/cmd"

func main() {
	cmd.Execute()
}
