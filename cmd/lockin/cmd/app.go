package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/lockin/config"
	"github.com/rustyeddy/lockin/journal"
	"github.com/rustyeddy/lockin/sheets"
)

func journalOptions(cfg *config.Config) journal.Options {
	// The journal bound covers every retry of a single sheet call.
	perAttempt := config.MustDuration(cfg.Sheets.Timeout)
	return journal.Options{
		RecomputeOnEdit: cfg.Journal.RecomputeOnEdit,
		Timeout:         perAttempt * time.Duration(cfg.Sheets.MaxRetries+1),
	}
}

// openSheets returns the sheet journal and the service account email, or a
// nil journal when sheets are disabled.
func openSheets(cfg *config.Config) (*journal.Sheet, string, error) {
	if !cfg.Sheets.Enabled {
		return nil, "", nil
	}
	sa, err := sheets.LoadCredentials(cfg.Sheets.CredentialsJSON, cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, "", err
	}

	wait := config.MustDuration(cfg.Sheets.RetryWait)
	client := sheets.NewClient(sa, sheets.Config{
		BaseURL:      cfg.Sheets.BaseURL,
		Timeout:      config.MustDuration(cfg.Sheets.Timeout),
		MaxRetries:   cfg.Sheets.MaxRetries,
		RetryWait:    wait,
		RetryMaxWait: 10 * wait,
	})
	return journal.NewSheet(client, journalOptions(cfg)), sa.ClientEmail, nil
}

// openLocal returns the fallback journal and its closer.
func openLocal(cfg *config.Config) (journal.Store, func() error, error) {
	opts := journalOptions(cfg)
	switch cfg.Journal.Type {
	case "sqlite":
		db, err := journal.NewSQLite(cfg.Journal.DBPath, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		return db, db.Close, nil
	default:
		return journal.NewMemory(opts), func() error { return nil }, nil
	}
}
