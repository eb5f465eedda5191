package main

import (
	"log"

	"github.com/quizforge/quizforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
