package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/config"
	"agaxfeed/internal/demo"
)

func main() {
	port := flag.Int("port", 8080, "Port to run the demo server on")
	host := flag.String("host", "localhost", "Host to bind the demo server to")
	slow := flag.String("slow", "", "Comma-separated blog IDs whose feeds answer after -delay")
	delay := flag.Duration("delay", 15*time.Second, "Delay applied to the -slow blogs")
	broken := flag.String("broken", "", "Comma-separated blog IDs whose feeds return invalid JSON")
	writeConfig := flag.String("write-config", "", "Write an agaxfeed config pointing at this server to the given path")
	flag.Parse()

	baseURL := fmt.Sprintf("http://%s:%d", *host, *port)

	var opts []demo.Option
	for _, id := range splitIDs(*slow) {
		opts = append(opts, demo.WithDelay(id, *delay))
	}
	for _, id := range splitIDs(*broken) {
		opts = append(opts, demo.WithBrokenFeed(id))
	}

	if *writeConfig != "" {
		conf := config.Default()
		conf.Sources = demo.Sources(baseURL)
		if err := config.WriteConfig(config.ExpandPath(*writeConfig), conf); err != nil {
			log.Fatalf("write config: %v", err)
		}
		log.Infof("Config for the demo blogs written to %s", *writeConfig)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", *host, *port),
		Handler: demo.NewDemoHandler(opts...),
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Demo server starting on %s", baseURL)
		for _, src := range demo.Sources(baseURL) {
			log.Infof("%s feed available at: %s/feeds/posts/default?alt=json", src.Name, src.URL)
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down demo server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Demo server stopped")
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
