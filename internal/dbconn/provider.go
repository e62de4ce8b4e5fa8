// Package dbconn resolves database connections for the pipeline.
//
// Different operators load into different databases, selected by an alias:
// DB_URL__TEAM1, DB_URL__TEAM2, falling back to plain DB_URL. The provider is
// an explicit object constructed once in main and passed by reference — there
// is deliberately no package-level cache.
package dbconn

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"dochicar/internal/storage"
)

// Provider opens and caches one repository per alias.
type Provider struct {
	kind    string
	maxOpen int

	// lookup and open are seams; tests swap them to avoid real env vars
	// and real databases.
	lookup func(string) string
	open   func(context.Context, storage.Config) (storage.Repository, error)

	mu    sync.Mutex
	repos map[string]storage.Repository
}

// NewProvider creates a provider for one backend kind.
func NewProvider(kind string, maxOpen int) *Provider {
	return &Provider{
		kind:    kind,
		maxOpen: maxOpen,
		lookup:  os.Getenv,
		open:    storage.New,
		repos:   map[string]storage.Repository{},
	}
}

// DSN resolves the connection string for an alias: DB_URL__<ALIAS> first,
// then plain DB_URL. An empty alias reads DB_URL directly.
func (p *Provider) DSN(alias string) (string, error) {
	if alias != "" {
		if dsn := p.lookup(envKey(alias)); dsn != "" {
			return dsn, nil
		}
	}
	if dsn := p.lookup("DB_URL"); dsn != "" {
		return dsn, nil
	}
	return "", fmt.Errorf("dbconn: DB_URL not set (alias %q)", alias)
}

// Repository returns the cached repository for alias, opening it on first
// use. Callers must not Close the returned repository; Close the provider.
func (p *Provider) Repository(ctx context.Context, alias string) (storage.Repository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if repo, ok := p.repos[alias]; ok {
		return repo, nil
	}

	dsn, err := p.DSN(alias)
	if err != nil {
		return nil, err
	}
	repo, err := p.open(ctx, storage.Config{Kind: p.kind, DSN: dsn, MaxOpen: p.maxOpen})
	if err != nil {
		return nil, fmt.Errorf("dbconn: open %s (alias %q): %w", p.kind, alias, err)
	}
	p.repos[alias] = repo
	return repo, nil
}

// Close closes every cached repository.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for alias, repo := range p.repos {
		repo.Close()
		delete(p.repos, alias)
	}
}

func envKey(alias string) string {
	return "DB_URL__" + strings.ToUpper(alias)
}
