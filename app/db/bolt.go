package db

import (
	"encoding/json"
	"fmt"
	"strconv"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketUsersDictionaries = "UsersDictionaries"
	bucketDictionary        = "Dictionary"
	bucketUsers             = "Users"
)

// BoltStorage implements storage interface for BoltDB
type BoltStorage struct {
	db *bolt.DB
}

// GetCached returns raw dictionary response from database
func (b *BoltStorage) GetCached(word string) ([]byte, error) {
	var res []byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketDictionary)).Get([]byte(word))
		if len(data) == 0 {
			return ErrNotFound
		}
		// data is only valid during the transaction
		res = append([]byte(nil), data...)
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// SaveCached saves raw dictionary response to database
func (b *BoltStorage) SaveCached(word string, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketDictionary)).Put([]byte(word), data); err != nil {
			return fmt.Errorf("failed to put word: %w", err)
		}
		return nil
	})
}

// GetUser returns user from database
func (b *BoltStorage) GetUser(id UserID) (User, error) {
	var user User
	err := b.db.View(func(tx *bolt.Tx) error {
		jdata := tx.Bucket([]byte(bucketUsers)).Get(userKey(id))
		if len(jdata) == 0 {
			return ErrNotFound
		}
		if err := json.Unmarshal(jdata, &user); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		return nil
	})
	return user, err
}

// SaveUser saves user to database
func (b *BoltStorage) SaveUser(user User) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		jdata, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		if err := tx.Bucket([]byte(bucketUsers)).Put(userKey(user.ID), jdata); err != nil {
			return fmt.Errorf("failed to put user: %w", err)
		}
		return nil
	})
}

// GetVocabularyItem returns item from user vocabulary
func (b *BoltStorage) GetVocabularyItem(user UserID, word string) (VocabularyEntry, error) {
	var item VocabularyEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		userBucket := tx.Bucket([]byte(bucketUsersDictionaries)).Bucket(userKey(user))
		if userBucket == nil {
			return ErrNotFound
		}
		jdata := userBucket.Get([]byte(word))
		if len(jdata) == 0 {
			return ErrNotFound
		}
		if err := json.Unmarshal(jdata, &item); err != nil {
			return fmt.Errorf("failed to unmarshal user item: %w", err)
		}
		return nil
	})
	return item, err
}

// SaveVocabularyItem saves item to user vocabulary
func (b *BoltStorage) SaveVocabularyItem(item VocabularyEntry) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketUsersDictionaries))
		userBucket, err := bucket.CreateBucketIfNotExists(userKey(item.User))
		if err != nil {
			return fmt.Errorf("failed to create user bucket: %w", err)
		}
		jdata, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal user item: %w", err)
		}
		if err := userBucket.Put([]byte(item.Word), jdata); err != nil {
			return fmt.Errorf("failed to put user item: %w", err)
		}
		return nil
	})
}

// DeleteVocabularyItem removes item from user vocabulary
func (b *BoltStorage) DeleteVocabularyItem(user UserID, word string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		userBucket := tx.Bucket([]byte(bucketUsersDictionaries)).Bucket(userKey(user))
		if userBucket == nil || userBucket.Get([]byte(word)) == nil {
			return ErrNotFound
		}
		if err := userBucket.Delete([]byte(word)); err != nil {
			return fmt.Errorf("failed to delete user item: %w", err)
		}
		return nil
	})
}

// GetVocabulary returns user vocabulary, bolt keeps keys sorted
func (b *BoltStorage) GetVocabulary(user UserID) ([]VocabularyEntry, error) {
	result := make([]VocabularyEntry, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		userBucket := tx.Bucket([]byte(bucketUsersDictionaries)).Bucket(userKey(user))
		if userBucket == nil {
			return nil
		}
		return userBucket.ForEach(func(k, v []byte) error {
			var item VocabularyEntry
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal user item %q: %w", k, err)
			}
			result = append(result, item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func userKey(id UserID) []byte {
	return []byte(strconv.FormatInt(int64(id), 10))
}

// NewBoltStorage creates BoltStorage instance and initialize buckets
func NewBoltStorage(db *bolt.DB) (*BoltStorage, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{bucketUsersDictionaries, bucketDictionary, bucketUsers} {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}
