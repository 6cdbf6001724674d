package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/pgvector/pgvector-go"

	"docquery/internal/ai"
	"docquery/internal/model"
	"docquery/internal/repository"
)

const answerSystemPrompt = `You are a helpful assistant that answers questions based ONLY on the provided context from documents.

IMPORTANT RULES:
1. Answer ONLY using information from the provided context
2. If the answer is not found in the context, respond with "Not found in documents."
3. Cite which document(s) you used to answer the question
4. Be concise and accurate
5. Do not make up information or use external knowledge`

// QueryOptions tune retrieval and answer composition.
type QueryOptions struct {
	// TopK nearest chunks fetched before the relevance filter.
	TopK int
	// MaxDistance is the cosine-distance cutoff; candidates at or past it
	// are discarded after the top-k fetch.
	MaxDistance float64
	// HistoryWindow is how many trailing (question, answer) pairs feed the
	// prompt as short-term memory.
	HistoryWindow int
	// AnswerMaxTokens bounds the completion length.
	AnswerMaxTokens int
	// Temperature keeps sampling deterministic-leaning when low.
	Temperature float64
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.TopK <= 0 {
		o.TopK = 10
	}
	if o.MaxDistance <= 0 {
		o.MaxDistance = 0.75
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = 3
	}
	if o.AnswerMaxTokens <= 0 {
		o.AnswerMaxTokens = 500
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.3
	}
	return o
}

// QueryService answers questions from a user's documents: retrieve nearest
// chunks, assemble a grounded prompt, call the completion model.
type QueryService struct {
	docStore  DocumentStore
	chunks    ChunkSearcher
	embedder  Embedder
	completer Completer
	chatCfg   ai.ChatConfig
	opts      QueryOptions
}

func NewQueryService(
	docStore DocumentStore,
	chunks ChunkSearcher,
	embedder Embedder,
	completer Completer,
	chatCfg ai.ChatConfig,
	opts QueryOptions,
) *QueryService {
	return &QueryService{
		docStore:  docStore,
		chunks:    chunks,
		embedder:  embedder,
		completer: completer,
		chatCfg:   chatCfg,
		opts:      opts.withDefaults(),
	}
}

// HistoryTurn is one prior exchange passed back in for follow-up questions.
type HistoryTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type AskInput struct {
	UserID     string
	Question   string
	DocumentID string // empty = search all of the user's documents
	History    []HistoryTurn
}

type AskResult struct {
	Answer  string            `json:"answer"`
	Sources []model.SourceRef `json:"sources"`
}

// Ask runs the full question flow. Sources come back in retrieval order,
// index-aligned with the "Source i" labels the model saw.
func (s *QueryService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	// Owning zero documents short-circuits before any embedding call.
	count, err := s.docStore.CountByUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoDocuments
	}

	matches, names, err := s.retrieve(ctx, input.UserID, question, input.DocumentID)
	if err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(question, matches, names, input.History)
	answer, err := s.completer.Complete(ctx, s.chatCfg, prompt, ai.CompleteOptions{
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.AnswerMaxTokens,
	})
	if err != nil {
		log.Printf("completion failed for user %s: %v", input.UserID, err)
		return nil, fmt.Errorf("generate answer failed: %w", err)
	}

	sources := make([]model.SourceRef, len(matches))
	for i, m := range matches {
		sources[i] = model.SourceRef{
			DocumentName: documentName(names, m.DocumentID),
			ChunkText:    m.Content,
			Similarity:   similarity(m.Distance),
		}
	}

	return &AskResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}

// retrieve embeds the question, fetches the top-k nearest chunks from the
// store, applies the relevance cutoff, and resolves document names. With a
// documentID the search is scoped to that document after an ownership check.
func (s *QueryService) retrieve(ctx context.Context, userID, question, documentID string) ([]repository.ChunkMatch, map[string]string, error) {
	if documentID != "" {
		doc, err := s.docStore.GetByIDAndUserID(documentID, userID)
		if err != nil {
			return nil, nil, err
		}
		if doc == nil {
			return nil, nil, ErrDocumentNotFound
		}
	}

	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		log.Printf("embed question failed for user %s: %v", userID, err)
		return nil, nil, fmt.Errorf("embed question failed: %w", err)
	}

	candidates, err := s.chunks.SearchNearest(userID, documentID, pgvector.NewVector(queryEmbedding), s.opts.TopK)
	if err != nil {
		return nil, nil, err
	}

	// Filter after the fetch: k nearest first, then drop anything past the
	// distance cutoff.
	matches := candidates[:0]
	for _, c := range candidates {
		if c.Distance < s.opts.MaxDistance {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, nil, ErrNoRelevantContent
	}

	seen := make(map[string]bool)
	var docIDs []string
	for _, m := range matches {
		if !seen[m.DocumentID] {
			seen[m.DocumentID] = true
			docIDs = append(docIDs, m.DocumentID)
		}
	}
	names, err := s.docStore.GetNamesByIDs(docIDs)
	if err != nil {
		return nil, nil, err
	}

	return matches, names, nil
}

// buildPrompt renders retrieved chunks as labeled source sections, prepends
// the trailing conversation window, and appends the current question.
func (s *QueryService) buildPrompt(question string, matches []repository.ChunkMatch, names map[string]string, history []HistoryTurn) []ai.ChatMessage {
	sections := make([]string, len(matches))
	for i, m := range matches {
		sections[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, documentName(names, m.DocumentID), m.Content)
	}
	contextBlock := strings.Join(sections, "\n\n---\n\n")

	var b strings.Builder
	if window := trailingTurns(history, s.opts.HistoryWindow); len(window) > 0 {
		b.WriteString("Previous conversation:\n")
		for i, turn := range window {
			fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, turn.Question, i+1, turn.Answer)
		}
		b.WriteString("\n")
	}
	b.WriteString("Context from documents:\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n---\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease answer the question based on the context above.")

	return []ai.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func trailingTurns(history []HistoryTurn, window int) []HistoryTurn {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

func documentName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown"
}

// similarity converts cosine distance to the reported two-decimal score.
func similarity(distance float64) float64 {
	return math.Round((1-distance)*100) / 100
}
