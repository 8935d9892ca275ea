package blobkv

import (
	"context"
	"errors"
	"strings"

	"github.com/fdg312/fitplanner/internal/blob"
	"github.com/fdg312/fitplanner/internal/storage"
)

const contentTypeJSON = "application/json"

// Store is a storage.KVStore that keeps each key as one object named
// <prefix>/<key>.json in a blob.Store.
type Store struct {
	objects blob.Store
	prefix  string
}

func New(objects blob.Store, prefix string) *Store {
	return &Store{
		objects: objects,
		prefix:  strings.Trim(strings.TrimSpace(prefix), "/"),
	}
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key + ".json"
	}
	return s.prefix + "/" + key + ".json"
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.objects.GetObject(ctx, s.objectKey(key))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.objects.PutObject(ctx, s.objectKey(key), value, contentTypeJSON)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.objects.DeleteObject(ctx, s.objectKey(key))
}

func (s *Store) Close() error {
	return nil
}
