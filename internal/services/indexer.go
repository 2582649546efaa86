package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
)

const docTypeCV = "cv"

// candidatesPerHit widens the chunk search so that enough distinct CVs remain
// after collapsing chunks.
const candidatesPerHit = 5

// ErrIndexDisabled is returned when no vector store is configured.
var ErrIndexDisabled = errors.New("vector index is disabled")

// ShortlistHit is one CV and its best chunk similarity to a job.
type ShortlistHit struct {
	CVID  string
	Score float32
}

// CVIndex ranks stored CVs by embedding similarity to a job. It never
// produces analysis results.
type CVIndex interface {
	Enabled() bool
	IndexCV(ctx context.Context, cvID, text string) error
	RemoveCV(ctx context.Context, cvID string) error
	Shortlist(ctx context.Context, jobDescription string, requirements []string, limit int) ([]ShortlistHit, error)
}

type cvIndex struct {
	store    QdrantService
	embedder Embedder
	chunker  TextChunker
	prompts  *PromptBuilder
	log      *zap.Logger
}

// NewCVIndex returns an index backed by store. A nil store gives a disabled
// index whose operations return ErrIndexDisabled.
func NewCVIndex(store QdrantService, embedder Embedder, log *zap.Logger) CVIndex {
	return &cvIndex{
		store:    store,
		embedder: embedder,
		chunker:  NewTextChunker(),
		prompts:  NewPromptBuilder(),
		log:      logger.OrNop(log),
	}
}

func (x *cvIndex) Enabled() bool {
	return x.store != nil && x.embedder != nil
}

// IndexCV replaces the stored chunks of one CV.
func (x *cvIndex) IndexCV(ctx context.Context, cvID, text string) error {
	if !x.Enabled() {
		return ErrIndexDisabled
	}

	chunks := x.chunker.ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		embedding, err := x.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of CV %s: %w", i, cvID, err)
		}
		embeddings[i] = embedding
	}

	if err := x.store.DeleteDocument(ctx, cvID); err != nil {
		return err
	}
	if err := x.store.UpsertChunks(ctx, cvID, docTypeCV, chunks, embeddings); err != nil {
		return err
	}

	x.log.Debug("📚 CV indexed", zap.String("cv_id", cvID), zap.Int("chunks", len(chunks)))
	return nil
}

func (x *cvIndex) RemoveCV(ctx context.Context, cvID string) error {
	if !x.Enabled() {
		return ErrIndexDisabled
	}
	return x.store.DeleteDocument(ctx, cvID)
}

// Shortlist returns up to limit CVs, most similar first.
func (x *cvIndex) Shortlist(ctx context.Context, jobDescription string, requirements []string, limit int) ([]ShortlistHit, error) {
	if !x.Enabled() {
		return nil, ErrIndexDisabled
	}
	if limit <= 0 {
		return []ShortlistHit{}, nil
	}

	query := x.prompts.BuildRetrievalQuery(jobDescription, requirements)
	embedding, err := x.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job query: %w", err)
	}

	results, err := x.store.SearchSimilar(ctx, embedding, docTypeCV, limit*candidatesPerHit)
	if err != nil {
		return nil, err
	}

	best := make(map[string]float32)
	var order []string
	for _, r := range results {
		if r.DocID == "" {
			continue
		}
		score, seen := best[r.DocID]
		if !seen {
			order = append(order, r.DocID)
		}
		if !seen || r.Score > score {
			best[r.DocID] = r.Score
		}
	}

	hits := make([]ShortlistHit, 0, len(order))
	for _, id := range order {
		hits = append(hits, ShortlistHit{CVID: id, Score: best[id]})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
