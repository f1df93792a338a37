package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"agaxfeed/internal/config"
	"agaxfeed/internal/demo"
)

const demoAddr = "localhost:8080"

func main() {
	cmd := &cli.Command{
		Name:  "vhs-helper",
		Usage: "VHS demo recording helper for agaxfeed",
		Commands: []*cli.Command{
			{
				Name:  "tui",
				Usage: "Record TUI demo (paging, filters, reading)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runDemo(ctx, "tui")
				},
			},
			{
				Name:  "list",
				Usage: "Record CLI demo (list, show, incremental paging)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runDemo(ctx, "list")
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDemo(ctx context.Context, demoName string) error {
	log.Infof("🎬 Starting %s demo generation...", demoName)

	if err := buildAgaxfeed(ctx); err != nil {
		return fmt.Errorf("failed to build agaxfeed: %w", err)
	}

	ln, err := net.Listen("tcp", demoAddr)
	if err != nil {
		return fmt.Errorf("demo server failed to start: %w", err)
	}
	srv := &http.Server{Handler: demo.NewDemoHandler()}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("demo server stopped")
		}
	}()

	// Ensure server is stopped when we're done
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error stopping demo server")
		}
	}()

	log.Info("⏳ Waiting for server to be ready...")
	if err := waitForServer(ctx, "http://"+demoAddr+"/", 30*time.Second); err != nil {
		return fmt.Errorf("demo server failed to start: %w", err)
	}

	configPath, err := createDemoConfig()
	if err != nil {
		return fmt.Errorf("failed to create demo config: %w", err)
	}

	tapePath := filepath.Join("tapes", demoName+".vhs")
	if err := runVHS(ctx, tapePath, configPath); err != nil {
		return fmt.Errorf("failed to run VHS: %w", err)
	}

	if err := validateGeneratedFiles(demoName); err != nil {
		return err
	}

	log.Infof("✅ %s demo completed successfully!", demoName)
	return nil
}

func waitForServer(ctx context.Context, url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 1 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				log.Info("✅ Demo server is ready!")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

func buildAgaxfeed(ctx context.Context) error {
	log.Info("🔧 Building agaxfeed...")
	return runCommand(ctx, nil, "go", "build", "-o", filepath.Join("tapes", "agaxfeed"), "./cmd/agaxfeed")
}

func runVHS(ctx context.Context, tapePath, configPath string) error {
	log.Infof("🎥 Recording VHS demo: %s", tapePath)
	return runCommand(ctx, []string{config.EnvConfigPath + "=" + configPath}, "vhs", tapePath)
}

func validateGeneratedFiles(demoName string) error {
	log.Info("🔍 Validating generated files...")

	gifPath := filepath.Join("tapes", demoName+".gif")
	if _, err := os.Stat(gifPath); os.IsNotExist(err) {
		return fmt.Errorf("❌ %s GIF not generated", demoName)
	}

	log.Infof("✅ %s files generated successfully: 📹 %s", demoName, gifPath)
	return nil
}

func runCommand(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// createDemoConfig writes a config pointing at the demo blogs, with logs
// kept out of the recording.
func createDemoConfig() (string, error) {
	dir, err := os.MkdirTemp("", "agaxfeed-demo")
	if err != nil {
		return "", err
	}

	conf := config.Default()
	conf.Sources = demo.Sources("http://" + demoAddr)
	conf.Log.File = filepath.Join(dir, "agaxfeed.log")
	conf.Server.Refresh = ""

	path := filepath.Join(dir, "config.yaml")
	if err := config.WriteConfig(path, conf); err != nil {
		return "", err
	}

	log.Infof("✅ Created config file at: %s", path)
	return path, nil
}
