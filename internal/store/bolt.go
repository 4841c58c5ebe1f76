package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/quietdesk/guidechat/internal/chat"
)

var transcriptsBucket = []byte("transcripts")

// Transcript is the immutable audit copy of a finished conversation. Live
// conversation state never touches disk; only this record does, when a
// conversation completes or is reset after real turns.
type Transcript struct {
	SessionID  string         `json:"session_id"`
	Messages   []chat.Message `json:"messages"`
	Completed  bool           `json:"completed"`
	ArchivedAt time.Time      `json:"archived_at"`
}

type Store interface {
	Archive(t Transcript) error
	BySession(sessionID string) ([]Transcript, error)
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(transcriptsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating transcripts bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Archive appends one transcript record. A session can archive more than
// once (reset, then run to completion), so keys are session id plus archive
// time.
func (s *BoltStore) Archive(t Transcript) error {
	if t.ArchivedAt.IsZero() {
		t.ArchivedAt = time.Now().UTC()
	}
	key := fmt.Sprintf("%s/%s", t.SessionID, t.ArchivedAt.Format(time.RFC3339Nano))
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return tx.Bucket(transcriptsBucket).Put([]byte(key), data)
	})
}

// BySession returns every archived transcript for a session, oldest first.
func (s *BoltStore) BySession(sessionID string) ([]Transcript, error) {
	prefix := []byte(sessionID + "/")
	var out []Transcript
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(transcriptsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var t Transcript
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
