package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docquery/internal/ai"
	"docquery/internal/model"
	"docquery/internal/repository"
)

func newQueryFixture(t *testing.T) (*QueryService, *fakeDocStore, *fakeChunkSearcher, *fakeEmbedder, *fakeCompleter) {
	t.Helper()
	docStore := newFakeDocStore()
	searcher := &fakeChunkSearcher{}
	embedder := &fakeEmbedder{}
	completer := &fakeCompleter{answer: "The answer."}
	svc := NewQueryService(docStore, searcher, embedder, completer, ai.ChatConfig{Model: "test-model"}, QueryOptions{})
	return svc, docStore, searcher, embedder, completer
}

func seedDocument(t *testing.T, store *fakeDocStore, userID, name string) string {
	t.Helper()
	doc := &model.Document{UserID: userID, Name: name, Content: "text"}
	require.NoError(t, store.CreateWithChunks(context.Background(), doc, nil))
	return doc.ID
}

func TestQueryService_Ask_EmptyQuestion(t *testing.T) {
	svc, store, _, embedder, _ := newQueryFixture(t)
	seedDocument(t, store, "user-1", "a.txt")

	_, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, embedder.embedCalls)
}

func TestQueryService_Ask_NoDocuments(t *testing.T) {
	svc, _, _, embedder, _ := newQueryFixture(t)

	_, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "anything?"})
	assert.ErrorIs(t, err, ErrNoDocuments)
	// Owning nothing must short-circuit before any provider call.
	assert.Zero(t, embedder.embedCalls)
}

func TestQueryService_Ask_DistanceCutoffAfterTopK(t *testing.T) {
	svc, store, searcher, _, _ := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "notes.txt")

	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "close chunk", Distance: 0.20},
		{ChunkID: "c2", DocumentID: docID, Content: "borderline chunk", Distance: 0.74},
		{ChunkID: "c3", DocumentID: docID, Content: "at cutoff", Distance: 0.75},
		{ChunkID: "c4", DocumentID: docID, Content: "far chunk", Distance: 0.90},
	}

	result, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "what?"})
	require.NoError(t, err)

	// Cutoff is exclusive: 0.75 and beyond are dropped.
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "close chunk", result.Sources[0].ChunkText)
	assert.Equal(t, "borderline chunk", result.Sources[1].ChunkText)
	assert.Equal(t, 10, searcher.lastK)
}

func TestQueryService_Ask_NoRelevantContent(t *testing.T) {
	svc, store, searcher, _, completer := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "notes.txt")

	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "far", Distance: 0.91},
	}

	_, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "what?"})
	assert.ErrorIs(t, err, ErrNoRelevantContent)
	assert.Nil(t, completer.lastMessages)
}

func TestQueryService_Ask_SimilarityScores(t *testing.T) {
	svc, store, searcher, _, _ := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "report.pdf")

	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "a", Distance: 0.20},
		{ChunkID: "c2", DocumentID: docID, Content: "b", Distance: 0.456},
	}

	result, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "what?"})
	require.NoError(t, err)
	require.Len(t, result.Sources, 2)
	assert.InDelta(t, 0.80, result.Sources[0].Similarity, 1e-9)
	assert.InDelta(t, 0.54, result.Sources[1].Similarity, 1e-9)
	assert.Equal(t, "report.pdf", result.Sources[0].DocumentName)
}

func TestQueryService_Ask_PromptLayout(t *testing.T) {
	svc, store, searcher, _, completer := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "manual.md")

	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "first chunk", Distance: 0.1},
		{ChunkID: "c2", DocumentID: docID, Content: "second chunk", Distance: 0.2},
	}

	_, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "how do I reset?"})
	require.NoError(t, err)

	require.Len(t, completer.lastMessages, 2)
	assert.Equal(t, "system", completer.lastMessages[0].Role)
	assert.Contains(t, completer.lastMessages[0].Content, "Not found in documents.")

	user := completer.lastMessages[1].Content
	assert.Contains(t, user, "[Source 1: manual.md]\nfirst chunk")
	assert.Contains(t, user, "[Source 2: manual.md]\nsecond chunk")
	assert.Contains(t, user, "\n\n---\n\n")
	assert.Contains(t, user, "Question: how do I reset?")
	assert.NotContains(t, user, "Previous conversation:")

	assert.InDelta(t, 0.3, completer.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 500, completer.lastOpts.MaxTokens)
}

func TestQueryService_Ask_HistoryWindow(t *testing.T) {
	svc, store, searcher, _, completer := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "manual.md")
	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "chunk", Distance: 0.1},
	}

	history := []HistoryTurn{
		{Question: "q one", Answer: "a one"},
		{Question: "q two", Answer: "a two"},
		{Question: "q three", Answer: "a three"},
		{Question: "q four", Answer: "a four"},
		{Question: "q five", Answer: "a five"},
	}

	_, err := svc.Ask(context.Background(), AskInput{
		UserID:   "user-1",
		Question: "follow up?",
		History:  history,
	})
	require.NoError(t, err)

	user := completer.lastMessages[1].Content
	assert.Contains(t, user, "Previous conversation:")
	// Only the trailing three turns survive, relabeled from Q1.
	assert.Contains(t, user, "Q1: q three\nA1: a three")
	assert.Contains(t, user, "Q2: q four\nA2: a four")
	assert.Contains(t, user, "Q3: q five\nA3: a five")
	assert.NotContains(t, user, "q one")
	assert.NotContains(t, user, "q two\n")
}

func TestQueryService_Ask_ScopedToDocument(t *testing.T) {
	svc, store, searcher, _, _ := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "a.txt")
	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "chunk", Distance: 0.1},
	}

	_, err := svc.Ask(context.Background(), AskInput{
		UserID:     "user-1",
		Question:   "what?",
		DocumentID: docID,
	})
	require.NoError(t, err)
	assert.Equal(t, docID, searcher.lastDocID)
}

func TestQueryService_Ask_ScopedToForeignDocument(t *testing.T) {
	svc, store, _, embedder, _ := newQueryFixture(t)
	seedDocument(t, store, "user-1", "mine.txt")
	foreignID := seedDocument(t, store, "user-2", "theirs.txt")

	_, err := svc.Ask(context.Background(), AskInput{
		UserID:     "user-1",
		Question:   "what?",
		DocumentID: foreignID,
	})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Zero(t, embedder.embedCalls)
}

func TestQueryService_Ask_UnknownDocumentNameFallback(t *testing.T) {
	svc, store, searcher, _, _ := newQueryFixture(t)
	seedDocument(t, store, "user-1", "a.txt")

	// A match pointing at a document that no longer resolves.
	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: "gone", Content: "orphan", Distance: 0.1},
	}

	result, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "what?"})
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Unknown", result.Sources[0].DocumentName)
}

func TestQueryService_Ask_TrimsAnswer(t *testing.T) {
	svc, store, searcher, _, completer := newQueryFixture(t)
	docID := seedDocument(t, store, "user-1", "a.txt")
	searcher.matches = []repository.ChunkMatch{
		{ChunkID: "c1", DocumentID: docID, Content: "chunk", Distance: 0.1},
	}
	completer.answer = "  padded answer \n"

	result, err := svc.Ask(context.Background(), AskInput{UserID: "user-1", Question: "what?"})
	require.NoError(t, err)
	assert.Equal(t, "padded answer", result.Answer)
}

func TestQueryOptions_Defaults(t *testing.T) {
	opts := QueryOptions{}.withDefaults()
	assert.Equal(t, 10, opts.TopK)
	assert.InDelta(t, 0.75, opts.MaxDistance, 1e-9)
	assert.Equal(t, 3, opts.HistoryWindow)
	assert.Equal(t, 500, opts.AnswerMaxTokens)
	assert.InDelta(t, 0.3, opts.Temperature, 1e-9)
}

func TestTrailingTurns(t *testing.T) {
	history := []HistoryTurn{{Question: "1"}, {Question: "2"}, {Question: "3"}, {Question: "4"}}
	assert.Len(t, trailingTurns(history, 2), 2)
	assert.Equal(t, "3", trailingTurns(history, 2)[0].Question)
	assert.Len(t, trailingTurns(history, 10), 4)
	assert.Len(t, trailingTurns(nil, 3), 0)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 0.80, similarity(0.2), 1e-9)
	assert.InDelta(t, 0.26, similarity(0.74), 1e-9)
	assert.InDelta(t, 1.0, similarity(0), 1e-9)
}

func TestAnswerSystemPromptRules(t *testing.T) {
	for _, fragment := range []string{
		"ONLY on the provided context",
		`respond with "Not found in documents."`,
		"Cite which document(s)",
		"Do not make up information",
	} {
		assert.True(t, strings.Contains(answerSystemPrompt, fragment), fragment)
	}
}
