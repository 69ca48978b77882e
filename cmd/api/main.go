package main

import (
	"context"
	"log"

	"github.com/figurestore/go-order-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("figure order API failed: %v", err)
	}
}
