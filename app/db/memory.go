package db

import "sync"

// InMemoryStorage keeps everything in maps, used in tests and as a fallback storage
type InMemoryStorage struct {
	dictionary   map[string][]byte
	users        map[UserID]User
	Vocabularies map[UserID]map[string]VocabularyEntry
	mx           sync.RWMutex
}

func (d *InMemoryStorage) GetCached(word string) ([]byte, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	data, ok := d.dictionary[word]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (d *InMemoryStorage) SaveCached(word string, data []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.dictionary[word] = data
	return nil
}

func (d *InMemoryStorage) GetUser(id UserID) (User, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (d *InMemoryStorage) SaveUser(user User) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.users[user.ID] = user
	return nil
}

func (d *InMemoryStorage) GetVocabularyItem(user UserID, word string) (VocabularyEntry, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	item, ok := d.Vocabularies[user][word]
	if !ok {
		return VocabularyEntry{}, ErrNotFound
	}
	return item, nil
}

func (d *InMemoryStorage) SaveVocabularyItem(item VocabularyEntry) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	vocabulary, ok := d.Vocabularies[item.User]
	if !ok {
		vocabulary = make(map[string]VocabularyEntry)
		d.Vocabularies[item.User] = vocabulary
	}
	vocabulary[item.Word] = item
	return nil
}

func (d *InMemoryStorage) DeleteVocabularyItem(user UserID, word string) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if _, ok := d.Vocabularies[user][word]; !ok {
		return ErrNotFound
	}
	delete(d.Vocabularies[user], word)
	return nil
}

func (d *InMemoryStorage) GetVocabulary(user UserID) ([]VocabularyEntry, error) {
	d.mx.RLock()
	defer d.mx.RUnlock()
	result := make([]VocabularyEntry, 0, len(d.Vocabularies[user]))
	for _, item := range d.Vocabularies[user] {
		result = append(result, item)
	}
	sortVocabulary(result)
	return result, nil
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		dictionary:   make(map[string][]byte),
		users:        make(map[UserID]User),
		Vocabularies: make(map[UserID]map[string]VocabularyEntry),
	}
}
