// cache memoizes computation results in a bolt database. Results are
// stored as JSON under a content hash of their inputs.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("cache")

// Store is a result cache. A nil Store caches nothing.
type Store struct {
	db     *bolt.DB
	hits   int
	misses int
}

// Open opens or creates the cache file.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	log.Debugf("Cache: %d hits, %d misses", s.hits, s.misses)
	return s.db.Close()
}

// Hash returns the content hash of the JSON encoding of values.
func Hash(values ...interface{}) (string, error) {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// Save stores v under key in bucket.
func (s *Store) Save(bucket, key string, v interface{}) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Error serializing cache entry", err)
		return err
	}
	return SaveData(s.db, []byte(bucket), []byte(key), data)
}

// Load reads the value stored under key into v. It returns false if
// there is no such entry.
func (s *Store) Load(bucket, key string, v interface{}) (bool, error) {
	if s == nil {
		return false, nil
	}
	data, err := LoadData(s.db, []byte(bucket), []byte(key))
	if err != nil || data == nil {
		s.misses++
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.misses++
		return false, err
	}
	s.hits++
	log.Debugf("Cache hit %s/%s", bucket, key)
	return true, nil
}

// Memo returns the cached result for inputs or computes and stores it.
// Cache errors are logged and do not fail the computation.
func Memo[T any](s *Store, bucket string, compute func() (T, error), inputs ...interface{}) (T, error) {
	if s == nil {
		return compute()
	}
	key, err := Hash(inputs...)
	if err != nil {
		log.Warningf("Cannot hash %s inputs: %v", bucket, err)
		return compute()
	}
	var res T
	if ok, err := s.Load(bucket, key, &res); ok {
		return res, nil
	} else if err != nil {
		log.Warningf("Error loading %s/%s: %v", bucket, key, err)
	}
	res, err = compute()
	if err != nil {
		return res, err
	}
	if err := s.Save(bucket, key, res); err != nil {
		log.Warningf("Error saving %s/%s: %v", bucket, key, err)
	}
	return res, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, bucket, key, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, bucket, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
