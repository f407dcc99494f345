package repositories

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"chat-sync/domain"
	"chat-sync/errors"
)

// Account couples a user profile with its password hash.
// Login is by display name, so that is the key.
type Account struct {
	User         domain.User `json:"user"`
	PasswordHash string      `json:"password_hash"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

func userKey(name string) []byte {
	return []byte("user:" + name)
}

func (r UserRepository) Save(account Account) error {
	value, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(account.User.DisplayName), value)
	})
}

func (r UserRepository) GetByName(name string) (Account, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return Account{}, errors.ErrUserNotFound
	}
	if err != nil {
		return Account{}, err
	}

	var account Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}
