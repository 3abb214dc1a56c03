package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			store := tu.NewMemoryStore(nil)

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Input:  input,
				Store:  store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})
	})

	t.Run("open", func(t *testing.T) {
		t.Run("seeds an empty store", func(t *testing.T) {
			store := tu.NewMemoryStore(nil)
			runner := NewRunner(RunnerOpts{Store: store, Output: &bytes.Buffer{}})

			if err := runner.open(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.songs.Len() != 3 {
				t.Errorf("expected 3 seed songs, got %d", runner.songs.Len())
			}
			if runner.prefs == nil || runner.engine == nil {
				t.Error("expected preferences and engine to be created")
			}
			if store.Value("songs") == "" {
				t.Error("expected seed songs to be written")
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			store := tu.NewMemoryStore(nil)
			runner := NewRunner(RunnerOpts{Store: store})
			if err := runner.open(); err != nil {
				t.Fatal(err)
			}
			songs := runner.songs

			if err := runner.open(); err != nil {
				t.Fatal(err)
			}
			if runner.songs != songs {
				t.Error("expected repository to be reused")
			}
		})

		t.Run("opens the configured database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = ":memory:"
			runner := NewRunner(RunnerOpts{Config: config})
			defer runner.Close()

			if err := runner.open(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.db == nil {
				t.Fatal("expected database to be opened")
			}
			if runner.songs.Len() != 3 {
				t.Errorf("expected 3 seed songs, got %d", runner.songs.Len())
			}

			if err := runner.Close(); err != nil {
				t.Errorf("expected clean close, got %v", err)
			}
			if runner.db != nil {
				t.Error("expected db to be cleared after close")
			}
		})

		t.Run("falls back on unknown locale", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Catalog.Locale = "not a locale!"
			runner := NewRunner(RunnerOpts{Config: config, Store: tu.NewMemoryStore(nil), Logger: shared.NewLogger(&bytes.Buffer{})})

			if err := runner.open(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("reports store read failures", func(t *testing.T) {
			store := tu.NewMemoryStore(nil)
			store.FailGet = true
			runner := NewRunner(RunnerOpts{Store: store})

			err := runner.open()
			if !errors.Is(err, shared.ErrStorage) {
				t.Errorf("expected ErrStorage, got %v", err)
			}
		})
	})

	t.Run("watch", func(t *testing.T) {
		t.Run("rejects an injected store", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Store: tu.NewMemoryStore(nil)})
			if err := runner.open(); err != nil {
				t.Fatal(err)
			}
			catalog, err := server.NewCatalogHandler(runner.songs, server.CatalogOpts{})
			if err != nil {
				t.Fatal(err)
			}

			if err := runner.watch(context.Background(), catalog); !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("starts for an on-disk database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "songbook.db")
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(&bytes.Buffer{})})
			defer runner.Close()
			if err := runner.open(); err != nil {
				t.Fatal(err)
			}
			catalog, err := server.NewCatalogHandler(runner.songs, server.CatalogOpts{})
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := runner.watch(ctx, catalog); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"count": 3}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\"count\":3}\n" {
				t.Errorf("expected compact JSON, got %q", output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected surrounding newlines, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "list", "show", "tags", "add", "update", "delete", "audio", "export", "import", "prefs", "tui", "serve"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestCheckAdmin(t *testing.T) {
	cfg := shared.AdminConfig{Email: "admin@example.com", PasswordSHA256: HashPassword("changeme")}

	tests := []struct {
		name     string
		cfg      shared.AdminConfig
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", cfg: cfg, email: "admin@example.com", password: "changeme"},
		{name: "email is case-insensitive", cfg: cfg, email: " Admin@Example.com ", password: "changeme"},
		{name: "wrong password", cfg: cfg, email: "admin@example.com", password: "nope", wantErr: shared.ErrUnauthorized},
		{name: "wrong email", cfg: cfg, email: "someone@example.com", password: "changeme", wantErr: shared.ErrUnauthorized},
		{name: "missing email", cfg: cfg, password: "changeme", wantErr: shared.ErrMissingCredentials},
		{name: "missing password", cfg: cfg, email: "admin@example.com", wantErr: shared.ErrMissingCredentials},
		{name: "no admin configured", cfg: shared.AdminConfig{}, email: "admin@example.com", password: "changeme", wantErr: shared.ErrUnauthorized},
		{
			name:     "uppercase digest in config",
			cfg:      shared.AdminConfig{Email: cfg.Email, PasswordSHA256: strings.ToUpper(cfg.PasswordSHA256)},
			email:    "admin@example.com",
			password: "changeme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAdmin(tt.cfg, tt.email, tt.password)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	got := HashPassword("changeme")
	if got != "057ba03d6c44104863dc7361fe4578965d1887360f90a0895882e58a6248fc86" {
		t.Errorf("unexpected digest %s", got)
	}
	if shared.DefaultConfig().Admin.PasswordSHA256 != got {
		t.Error("expected default config to hash the documented password")
	}
}
