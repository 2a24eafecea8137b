package main

import (
	"github.com/lihongwen/pgvector-kit/internal/cli"
)

func main() {
	cli.Execute()
}
