package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	prefixWord     = "word:"
	prefixUser     = "user:"
	prefixUserItem = "user_item:"
)

type RedisStorage struct {
	db *redis.Client
}

// GetCached returns raw dictionary response from redis
func (s *RedisStorage) GetCached(word string) ([]byte, error) {
	data, err := s.db.Get(context.Background(), prefixWord+word).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching word: %w", err)
	}
	return data, nil
}

// SaveCached saves raw dictionary response to redis
func (s *RedisStorage) SaveCached(word string, data []byte) error {
	_, err := s.db.Set(context.Background(), prefixWord+word, string(data), 0).Result()
	if err != nil {
		return fmt.Errorf("saving word: %w", err)
	}
	return nil
}

// GetUser from redis
func (s *RedisStorage) GetUser(id UserID) (User, error) {
	data, err := s.db.Get(context.Background(), prefixUser+strconv.FormatInt(int64(id), 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("fetching user: %w", err)
	}
	buf := bytes.NewBufferString(data)
	var user User
	if jerr := json.NewDecoder(buf).Decode(&user); jerr != nil {
		return user, fmt.Errorf("unmarshal user: %w", jerr)
	}
	return user, nil
}

// SaveUser to redis
func (s *RedisStorage) SaveUser(user User) error {
	key := prefixUser + strconv.FormatInt(int64(user.ID), 10)
	jdata, jerr := json.Marshal(user)
	if jerr != nil {
		return fmt.Errorf("marshal user: %w", jerr)
	}
	_, err := s.db.Set(context.Background(), key, string(jdata), 0).Result()
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *RedisStorage) GetVocabularyItem(user UserID, word string) (VocabularyEntry, error) {
	data, err := s.db.HGet(context.Background(), userItemKey(user), word).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return VocabularyEntry{}, ErrNotFound
		}
		return VocabularyEntry{}, fmt.Errorf("fetching user item: %w", err)
	}
	buf := bytes.NewBufferString(data)
	var item VocabularyEntry
	if jerr := json.NewDecoder(buf).Decode(&item); jerr != nil {
		return item, fmt.Errorf("unmarshal user item: %w", jerr)
	}
	return item, nil
}

func (s *RedisStorage) SaveVocabularyItem(item VocabularyEntry) error {
	jdata, jerr := json.Marshal(item)
	if jerr != nil {
		return fmt.Errorf("marshal user item: %w", jerr)
	}
	_, err := s.db.HSet(context.Background(), userItemKey(item.User), item.Word, string(jdata)).Result()
	if err != nil {
		return fmt.Errorf("saving user item: %w", err)
	}
	return nil
}

func (s *RedisStorage) DeleteVocabularyItem(user UserID, word string) error {
	deleted, err := s.db.HDel(context.Background(), userItemKey(user), word).Result()
	if err != nil {
		return fmt.Errorf("deleting user item: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// GetVocabulary from redis
func (s *RedisStorage) GetVocabulary(user UserID) ([]VocabularyEntry, error) {
	userItems, err := s.db.HGetAll(context.Background(), userItemKey(user)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []VocabularyEntry{}, nil
		}
		return nil, fmt.Errorf("fetching user items: %w", err)
	}
	result := make([]VocabularyEntry, 0, len(userItems))
	for word, jdata := range userItems {
		var item VocabularyEntry
		if jerr := json.NewDecoder(bytes.NewBufferString(jdata)).Decode(&item); jerr != nil {
			return nil, fmt.Errorf("unmarshal user item %q: %w", word, jerr)
		}
		result = append(result, item)
	}
	sortVocabulary(result)
	return result, nil
}

func userItemKey(user UserID) string {
	return prefixUserItem + strconv.FormatInt(int64(user), 10)
}

// NewRedisStorage creates RedisStorage with given url
func NewRedisStorage(url string) (*RedisStorage, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStorage{db: rdb}, nil
}
