package main

import (
	"github.com/joho/godotenv"
	"github.com/jsphweid/accompanist/cmd"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	cmd.Execute()
}
