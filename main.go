package main

import "github.com/msomdec/catalog-admin/internal/cli"

func main() {
	cli.Execute()
}
