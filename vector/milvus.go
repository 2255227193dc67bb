package vector

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"videoquery/config"
	"videoquery/core"
)

// Milvus stores embeddings in a Milvus collection, filtered per transcript.
type Milvus struct {
	mc   client.Client
	coll string
	dim  int
}

// NewMilvus connects using MILVUS_ADDR / MILVUS_USERNAME / MILVUS_PASSWORD /
// MILVUS_API_KEY and ensures the collection, index and load state.
func NewMilvus(ctx context.Context, cfg *config.Config) (*Milvus, error) {
	addr := os.Getenv("MILVUS_ADDR")
	if addr == "" {
		addr = "localhost:19530"
	}
	coll := os.Getenv("MILVUS_COLLECTION")
	if coll == "" {
		coll = "transcript_segments"
	}

	mc, err := client.NewClient(ctx, client.Config{
		Address:  addr,
		Username: os.Getenv("MILVUS_USERNAME"),
		Password: os.Getenv("MILVUS_PASSWORD"),
		APIKey:   os.Getenv("MILVUS_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &Milvus{mc: mc, coll: coll, dim: cfg.EmbeddingDim}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Milvus) ensureCollection(ctx context.Context) error {
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !has {
		schema := entity.NewSchema()
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("transcript_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("segment_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("start").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("end").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))
		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, s.coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func filterExpr(transcriptID string) string {
	return fmt.Sprintf("transcript_id == %q", strings.ReplaceAll(transcriptID, `"`, `\"`))
}

func (s *Milvus) Upsert(ctx context.Context, transcriptID string, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	// Milvus has no native upsert on non-primary keys: drop prior rows for
	// these segment IDs first so re-indexing stays idempotent.
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, fmt.Sprintf("%q", r.SegmentID))
	}
	expr := fmt.Sprintf("%s and segment_id in [%s]", filterExpr(transcriptID), strings.Join(ids, ", "))
	if err := s.mc.Delete(ctx, s.coll, "", expr); err != nil {
		return 0, fmt.Errorf("%w: delete prior segments: %v", core.ErrBackendUnavailable, err)
	}

	tids := make([]string, 0, len(records))
	sids := make([]string, 0, len(records))
	starts := make([]float64, 0, len(records))
	ends := make([]float64, 0, len(records))
	texts := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	for _, r := range records {
		tids = append(tids, transcriptID)
		sids = append(sids, r.SegmentID)
		starts = append(starts, r.Start)
		ends = append(ends, r.End)
		texts = append(texts, r.Text)
		vectors = append(vectors, r.Vector)
	}

	_, err := s.mc.Insert(ctx, s.coll, "",
		entity.NewColumnVarChar("transcript_id", tids),
		entity.NewColumnVarChar("segment_id", sids),
		entity.NewColumnDouble("start", starts),
		entity.NewColumnDouble("end", ends),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("vector", s.dim, vectors),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert segments: %v", core.ErrBackendUnavailable, err)
	}
	return len(records), nil
}

func (s *Milvus) Query(ctx context.Context, transcriptID string, vector []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	sp, _ := entity.NewIndexHNSWSearchParam(74)
	res, err := s.mc.Search(ctx, s.coll, []string{}, filterExpr(transcriptID),
		[]string{"segment_id", "start", "end", "text"},
		[]entity.Vector{entity.FloatVector(vector)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("%w: milvus search: %v", core.ErrBackendUnavailable, err)
	}

	var hits []Hit
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var h Hit
			if c, ok := cols["segment_id"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					h.SegmentID = data[i]
				}
			}
			if c, ok := cols["start"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					h.Start = data[i]
				}
			}
			if c, ok := cols["end"].(*entity.ColumnDouble); ok {
				if data := c.Data(); i < len(data) {
					h.End = data[i]
				}
			}
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					h.Text = data[i]
				}
			}
			h.Similarity = float64(r.Scores[i])
			hits = append(hits, h)
		}
	}
	return hits, nil
}

func (s *Milvus) Count(ctx context.Context, transcriptID string) (int, error) {
	res, err := s.mc.Query(ctx, s.coll, []string{}, filterExpr(transcriptID), []string{"segment_id"})
	if err != nil {
		return 0, fmt.Errorf("%w: milvus query: %v", core.ErrBackendUnavailable, err)
	}
	for _, c := range res {
		if c.Name() == "segment_id" {
			return c.Len(), nil
		}
	}
	return 0, nil
}

func (s *Milvus) Delete(ctx context.Context, transcriptID string) (int, error) {
	n, err := s.Count(ctx, transcriptID)
	if err != nil {
		return 0, err
	}
	if err := s.mc.Delete(ctx, s.coll, "", filterExpr(transcriptID)); err != nil {
		return 0, fmt.Errorf("%w: milvus delete: %v", core.ErrBackendUnavailable, err)
	}
	return n, nil
}
