package config

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

type Driver interface {
	Exists() (bool, error)
	Write(config Config) error
	Read() (Config, error)
}

func NewStore(driver Driver) (*Store, error) {
	exists, err := driver.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := driver.Write(defaultConfig); err != nil {
			return nil, err
		}
	}

	return &Store{
		driver: driver,
	}, nil
}

type Store struct {
	mu     sync.Mutex
	driver Driver
}

func (p *Store) GetConfig() (Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.driver.Read()
}

func (p *Store) UpdateConfig(fn func(cfg Config) (Config, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := p.driver.Read()
	if err != nil {
		return err
	}

	cfg, err = fn(cfg)
	if err != nil {
		return err
	}

	return p.driver.Write(cfg)
}

// AddTag appends name to the configured tags unless it is already there.
func (p *Store) AddTag(name string) error {
	return p.UpdateConfig(func(cfg Config) (Config, error) {
		if !slices.Contains(cfg.Tags, name) {
			cfg.Tags = append(cfg.Tags, name)
		}
		return cfg, nil
	})
}

// RecordTags adds every tag received on tagC until ctx is done.
func (p *Store) RecordTags(ctx context.Context, tagC <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name := <-tagC:
			if err := p.AddTag(name); err != nil {
				slog.Error("Failed to save tag", "tag", name, "error", err)
			}
		}
	}
}

// Load opens the config file, creating it with defaults when missing, and
// returns the store with the normalized config.
func Load(filePath string) (*Store, Config, error) {
	store, err := NewStore(NewDriver(filePath))
	if err != nil {
		return nil, Config{}, err
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return nil, Config{}, err
	}

	return store, Normalize(cfg), nil
}
