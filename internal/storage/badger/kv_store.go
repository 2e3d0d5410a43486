package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
)

// Store: долговременное key-value хранилище поверх встроенной Badger.
type Store struct {
	db     *badger.DB
	logger *log.Entry
}

// Open открывает базу Badger по пути path. Пустой путь открывает базу в памяти.
func Open(path string, logger *log.Entry) (*Store, error) {
	if logger == nil {
		logger = log.WithField("component", "badger-store")
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	logger.WithField("path", path).Info("badger store opened")
	return &Store{db: db, logger: logger}, nil
}

// Get возвращает значение ключа и признак наличия.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("badger get %q: %w", key, err)
	}
	return string(value), true, nil
}

// Set записывает значение в одной транзакции.
func (s *Store) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ.
func (s *Store) Remove(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %q: %w", key, err)
	}
	return nil
}

// Ping проверяет, что база открыта и принимает транзакции.
func (s *Store) Ping(_ context.Context) error {
	if s == nil || s.db == nil || s.db.IsClosed() {
		return fmt.Errorf("badger store is closed: %w", domain.ErrStorageUnavailable)
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Close закрывает базу.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Info("closing badger store")
	return s.db.Close()
}

var _ domain.KVStore = (*Store)(nil)
