package main

import "github.com/user/listing-ingestor/internal/cli"

func main() {
	cli.Execute()
}
