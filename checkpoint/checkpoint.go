// Package checkpoint saves and restores partial inference
// accumulations, so long exponential runs survive interruption.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the key name for all checkpoints.
var MAIN = []byte("main")

// Data stores a partially accumulated inference state. Gene and Trait
// hold the per-person bucket sums (log-sums if LogSpace is set).
type Data struct {
	Gene       [][3]float64 `json:"gene"`
	Trait      [][2]float64 `json:"trait"`
	Evidence   float64      `json:"evidence"`
	Hypotheses int64        `json:"hypotheses"`
	// Done is the number of fully processed trait subsets.
	Done     int  `json:"done"`
	LogSpace bool `json:"logSpace"`
	Final    bool `json:"final"`
}

// IO saves and loads checkpoints for one inference run, identified by
// a key derived from the input data.
type IO struct {
	db      *bolt.DB
	key     []byte
	last    time.Time
	seconds float64
}

// NewIO creates a new IO. Checkpoints are considered old after the
// given number of seconds.
func NewIO(db *bolt.DB, key []byte, seconds float64) (s *IO) {
	s = &IO{
		db:      db,
		key:     key,
		seconds: seconds,
	}
	return
}

// Save saves a checkpoint to the database.
func (s *IO) Save(data *Data) error {
	// Even if saving fails, we do not want to run this code too often.
	s.SetNow()
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, s.key, dataB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
	}
	return err
}

// Load returns the stored accumulation state, nil if there is none.
func (s *IO) Load() (*Data, error) {
	var data *Data

	b, err := LoadData(s.db, s.key)
	if err != nil || b == nil {
		return nil, err
	}

	err = json.Unmarshal(b, &data)
	if err != nil {
		return nil, err
	}

	if data == nil || len(data.Gene) == 0 {
		return nil, nil
	}
	return data, nil
}

// Old returns true if the last checkpoint save was too long ago.
func (s *IO) Old() bool {
	if time.Since(s.last).Seconds() > s.seconds {
		return true
	}
	return false
}

// SetNow sets the last checkpoint time to now.
func (s *IO) SetNow() {
	s.last = time.Now()
}

// SaveData saves a value in the bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	return err
}

// LoadData loads a value from the bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		v := b.Get(key)
		if v != nil {
			data = append(data, v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
