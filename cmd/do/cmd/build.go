package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

func BuildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a static server binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "bin/server", "binary path")
	return cmd
}

func runBuild(output string) error {
	fmt.Println("==> Building", output)

	build := exec.Command("go", "build", "-trimpath", "-ldflags", "-s -w", "-o", output, "./cmd/server")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	// modernc sqlite is pure Go, so the binary needs no cgo.
	build.Env = append(os.Environ(), "CGO_ENABLED=0")
	if err := build.Run(); err != nil {
		return fmt.Errorf("go build failed: %w", err)
	}
	return nil
}

// devEnv is the environment for local runs: development mode on the
// port air proxies to, unless already set.
func devEnv() []string {
	env := os.Environ()
	has := func(key string) bool {
		for _, kv := range env {
			if strings.HasPrefix(kv, key+"=") {
				return true
			}
		}
		return false
	}
	if !has("APP_ENV") {
		env = append(env, "APP_ENV=development")
	}
	if !has("PORT") {
		env = append(env, "PORT=8090")
	}
	return env
}
