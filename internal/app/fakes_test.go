package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"docquery/internal/ai"
	"docquery/internal/model"
	"docquery/internal/repository"
)

type fakeDocStore struct {
	docs        map[string]*model.Document
	chunks      map[string][]model.Chunk
	nextID      int
	createErr   error
	deletedDocs []string
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:   make(map[string]*model.Document),
		chunks: make(map[string][]model.Chunk),
	}
}

func (f *fakeDocStore) CreateWithChunks(ctx context.Context, doc *model.Document, chunks []model.Chunk) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	doc.ID = fmt.Sprintf("doc-%d", f.nextID)
	f.docs[doc.ID] = doc
	f.chunks[doc.ID] = chunks
	return nil
}

func (f *fakeDocStore) ListByUserID(userID string) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDocStore) CountByUserID(userID string) (int64, error) {
	var n int64
	for _, d := range f.docs {
		if d.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocStore) GetByIDAndUserID(id, userID string) (*model.Document, error) {
	d, ok := f.docs[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return d, nil
}

func (f *fakeDocStore) GetNamesByIDs(ids []string) (map[string]string, error) {
	names := make(map[string]string)
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			names[id] = d.Name
		}
	}
	return names, nil
}

func (f *fakeDocStore) DeleteWithChunks(ctx context.Context, id string) error {
	delete(f.docs, id)
	delete(f.chunks, id)
	f.deletedDocs = append(f.deletedDocs, id)
	return nil
}

type fakeChunkSearcher struct {
	matches    []repository.ChunkMatch
	err        error
	lastUserID string
	lastDocID  string
	lastK      int
}

func (f *fakeChunkSearcher) SearchNearest(userID, documentID string, query pgvector.Vector, k int) ([]repository.ChunkMatch, error) {
	f.lastUserID = userID
	f.lastDocID = documentID
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	out := make([]repository.ChunkMatch, len(f.matches))
	copy(out, f.matches)
	return out, nil
}

type fakeEmbedder struct {
	dim        int
	err        error
	embedCalls int
	batchCalls [][]string
}

func (f *fakeEmbedder) vector() []float32 {
	dim := f.dim
	if dim == 0 {
		dim = 4
	}
	v := make([]float32, dim)
	for i := range v {
		v[i] = 0.1
	}
	return v
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls = append(f.batchCalls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vector()
	}
	return out, nil
}

type fakeCompleter struct {
	answer       string
	err          error
	lastMessages []ai.ChatMessage
	lastOpts     ai.CompleteOptions
}

func (f *fakeCompleter) Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, opts ai.CompleteOptions) (string, error) {
	f.lastMessages = messages
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakePublisher struct {
	events []model.IngestionEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event model.IngestionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*model.ChatSession
	nextID   int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.ChatSession)}
}

func (f *fakeSessionStore) Create(session *model.ChatSession) error {
	f.nextID++
	session.ID = fmt.Sprintf("sess-%d", f.nextID)
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeSessionStore) ReplaceContent(session *model.ChatSession) error {
	stored, ok := f.sessions[session.ID]
	if !ok {
		return errors.New("session missing")
	}
	stored.Title = session.Title
	stored.Messages = session.Messages
	return nil
}

func (f *fakeSessionStore) ListByUserID(userID string) ([]model.ChatSession, error) {
	var out []model.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) GetByIDAndUserID(id, userID string) (*model.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) DeleteByIDAndUserID(id, userID string) (bool, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(f.sessions, id)
	return true, nil
}

type fakeSessionCache struct {
	data        map[string][]model.ChatSession
	invalidated []string
	sets        int
	hits        int
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{data: make(map[string][]model.ChatSession)}
}

func (f *fakeSessionCache) Get(ctx context.Context, userID string) ([]model.ChatSession, bool, error) {
	sessions, ok := f.data[userID]
	if ok {
		f.hits++
	}
	return sessions, ok, nil
}

func (f *fakeSessionCache) Set(ctx context.Context, userID string, sessions []model.ChatSession) error {
	f.sets++
	f.data[userID] = sessions
	return nil
}

func (f *fakeSessionCache) Invalidate(ctx context.Context, userID string) error {
	delete(f.data, userID)
	f.invalidated = append(f.invalidated, userID)
	return nil
}
