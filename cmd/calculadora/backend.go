package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vield/calculadora/internal/config"
	"github.com/vield/calculadora/internal/lead"
	"github.com/vield/calculadora/internal/logger"
	calcnats "github.com/vield/calculadora/internal/nats"
	"github.com/vield/calculadora/internal/store"
	"github.com/vield/calculadora/internal/wizard"
)

// backend bundles the store and intake chosen by configuration. The
// embedded broker is only started when one of them needs NATS.
type backend struct {
	store  store.Store
	intake lead.Intake
	broker *calcnats.Broker
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}

	if cfg.Store == config.StoreNATS || cfg.Intake == config.IntakeNATS {
		broker, err := calcnats.Start(filepath.Join(cfg.DataDir, "nats"))
		if err != nil {
			return nil, err
		}
		b.broker = broker
	}

	if err := b.openStore(ctx, cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	if err := b.openIntake(ctx, cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backend) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store {
	case config.StoreMemory:
		b.store = store.NewMemoryStore()
	case config.StoreFile:
		b.store = store.NewFileStore(filepath.Join(cfg.DataDir, "state"))
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "calculadora.db"))
		if err != nil {
			return err
		}
		b.store = s
	case config.StoreNATS:
		kv, err := calcnats.OpenStateBucket(ctx, b.broker.JS)
		if err != nil {
			return err
		}
		b.store = store.NewNATSStore(kv)
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}
	logger.Debug("Using %s store", cfg.Store)
	return nil
}

func (b *backend) openIntake(ctx context.Context, cfg *config.Config) error {
	switch cfg.Intake {
	case config.IntakeLog:
		b.intake = lead.LogIntake{}
	case config.IntakeNATS:
		in, err := lead.NewNATSIntake(ctx, b.broker.JS)
		if err != nil {
			return err
		}
		b.intake = in
	case config.IntakeCommand:
		b.intake = &lead.CommandIntake{Command: cfg.IntakeCommand, Timeout: cfg.Timeout()}
	default:
		return fmt.Errorf("unknown intake %q", cfg.Intake)
	}
	logger.Debug("Using %s intake", cfg.Intake)
	return nil
}

func (b *backend) persistence() *wizard.KVPersistence {
	return wizard.NewKVPersistence(b.store)
}

// Close releases the store before stopping the broker it may depend on.
func (b *backend) Close() error {
	var errs []error
	if b.store != nil {
		errs = append(errs, b.store.Close())
	}
	if b.broker != nil {
		errs = append(errs, b.broker.Close())
	}
	return errors.Join(errs...)
}
