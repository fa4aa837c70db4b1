package credstore

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/gundriai/merovote-app/internal/domain"
)

// BadgerStore keeps the credential in a local badger database under the
// configured storage path.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) get(key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (s *BadgerStore) set(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) AccessToken() (string, error) {
	return s.get(KeyAccessToken)
}

func (s *BadgerStore) SetAccessToken(token string) error {
	return s.set(KeyAccessToken, token)
}

func (s *BadgerStore) RefreshToken() (string, error) {
	return s.get(KeyRefreshToken)
}

func (s *BadgerStore) SetRefreshToken(token string) error {
	return s.set(KeyRefreshToken, token)
}

func (s *BadgerStore) User() (*domain.User, error) {
	data, err := s.get(KeyUserData)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("unmarshal user record: %w", err)
	}
	return &user, nil
}

func (s *BadgerStore) SetUser(user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}
	return s.set(KeyUserData, string(data))
}

func (s *BadgerStore) Clear() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserData} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
