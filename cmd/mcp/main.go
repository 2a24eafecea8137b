package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lihongwen/pgvector-kit/internal/app"
	"github.com/lihongwen/pgvector-kit/internal/config"
	"github.com/lihongwen/pgvector-kit/internal/mcpserver"
)

func main() {
	port := flag.Int("port", 0, "HTTP port (0 = use stdio)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	server := mcpserver.NewServer(application)

	if *port > 0 {
		addr := fmt.Sprintf(":%d", *port)
		log.Printf("MCP server listening on http://localhost%s", addr)
		if err := server.RunHTTP(ctx, addr); err != nil {
			log.Fatalf("mcp server: %v", err)
		}
		return
	}

	if err := server.Run(ctx); err != nil {
		log.Fatalf("mcp server: %v", err)
	}
}
