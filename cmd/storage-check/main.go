package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/config"
	"github.com/you/dairyshell/internal/infrastructure/database"
)

const checkKey = "storage-check"

// Verifies the configured session storage accepts a write, read and delete
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Session Storage Check")
	fmt.Println("=====================")
	fmt.Printf("Driver: %s\n", cfg.StorageDriver)

	store, err := database.OpenKeyValueStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	fmt.Println("✓ Storage opened")

	value := time.Now().UTC().Format(time.RFC3339Nano)
	if err := store.Set(ctx, map[string]string{checkKey: value}); err != nil {
		log.Fatalf("Failed to write check key: %v", err)
	}
	fmt.Println("✓ Probe key written")

	got, err := store.Get(ctx, checkKey)
	if err != nil {
		log.Fatalf("Failed to read check key: %v", err)
	}
	if got != value {
		log.Fatalf("Probe key mismatch: wrote %q, read %q", value, got)
	}
	fmt.Println("✓ Probe key read back")

	if err := store.Delete(ctx, checkKey); err != nil {
		log.Fatalf("Failed to delete check key: %v", err)
	}
	if _, err := store.Get(ctx, checkKey); !errors.Is(err, domain.ErrKeyNotFound) {
		log.Fatalf("Probe key still present after delete: %v", err)
	}
	fmt.Println("✓ Probe key deleted")

	for _, key := range []string{domain.StorageKeyUser, domain.StorageKeyToken} {
		_, err := store.Get(ctx, key)
		switch {
		case err == nil:
			fmt.Printf("  %s: present\n", key)
		case errors.Is(err, domain.ErrKeyNotFound):
			fmt.Printf("  %s: absent\n", key)
		default:
			log.Fatalf("Failed to read %s: %v", key, err)
		}
	}
	fmt.Println("\n🎉 Storage is ready!")
}
