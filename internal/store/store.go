// Package store keeps uploaded SBOM documents in memory for the lifetime of
// the process. Documents are keyed by a generated UUID.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surajkum4r/CERT-In-SBOM-Mapper/model"
)

// DocumentStore is a concurrency-safe in-memory document registry.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*model.Document)}
}

// Add registers a document under a fresh UUID and returns it.
func (s *DocumentStore) Add(doc *model.Document) *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = uuid.NewString()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	s.docs[doc.ID] = doc
	return doc
}

// Get returns the document with the given id.
func (s *DocumentStore) Get(id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *DocumentStore) List() []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*model.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs
}
