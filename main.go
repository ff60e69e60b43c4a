package main

import (
	"github.com/joho/godotenv"

	"github.com/0xshariq/timeline/cmd"
)

func main() {
	// Tokens may live in a local .env; absence is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
