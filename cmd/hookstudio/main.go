package main

import (
	"log"

	"github.com/MrSnakeDoc/hookstudio/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ hookstudio failed to start: %v", err)
	}
}
