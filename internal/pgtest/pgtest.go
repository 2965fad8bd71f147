// Package pgtest runs throwaway Postgres containers for integration tests.
package pgtest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// EnvDatabaseURL names a database that tests may use instead of starting a
// container.
const EnvDatabaseURL = "TOKENLIST_TEST_DATABASE_URL"

var ErrDockerUnavailable = errors.New("docker is not available")

type Container struct {
	ID       string
	Port     int
	User     string
	Password string
	Database string
}

func (c *Container) URL() string {
	return fmt.Sprintf("postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		c.User, c.Password, c.Port, c.Database)
}

type Options struct {
	Image    string
	User     string
	Password string
	Database string
	Ready    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Image:    "postgres:16",
		User:     "tokenlist",
		Password: "tokenlist",
		Database: "tokenlist",
		Ready:    30 * time.Second,
	}
}

// Start runs a Postgres container on a free local port and waits until it
// accepts connections.
func Start(ctx context.Context, opts Options) (*Container, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, ErrDockerUnavailable
	}

	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to find free port: %w", err)
	}

	out, err := exec.CommandContext(ctx, "docker", "run", "-d", "--rm",
		"-e", "POSTGRES_USER="+opts.User,
		"-e", "POSTGRES_PASSWORD="+opts.Password,
		"-e", "POSTGRES_DB="+opts.Database,
		"-p", fmt.Sprintf("%d:5432", port),
		opts.Image,
	).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to start container: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	c := &Container{
		ID:       strings.TrimSpace(string(out)),
		Port:     port,
		User:     opts.User,
		Password: opts.Password,
		Database: opts.Database,
	}

	if err := c.wait(ctx, opts.Ready); err != nil {
		_ = c.Stop(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *Container) Stop(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "docker", "stop", c.ID).Run(); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

func (c *Container) wait(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		check := exec.CommandContext(ctx, "docker", "exec", c.ID,
			"pg_isready", "-h", "localhost", "-U", c.User, "-d", c.Database)
		if check.Run() == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for postgres in container %s", c.ID)
}

// URL returns a connection string for integration tests: the one named by
// TOKENLIST_TEST_DATABASE_URL, or a fresh container that is stopped when the
// test ends. The test is skipped in -short mode or when neither is available.
func URL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		return url
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c, err := Start(ctx, DefaultOptions())
	if errors.Is(err, ErrDockerUnavailable) {
		t.Skipf("%s not set and docker is not available", EnvDatabaseURL)
	}
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c.URL()
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

