package vector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"videoquery/config"
	"videoquery/core"
)

// Pg stores embeddings in Postgres with the pgvector extension, one row per
// (transcript_id, segment_id). A connection pool backs it so concurrent
// queries from separate request goroutines never share a connection.
type Pg struct {
	pool *pgxpool.Pool
	dim  int
}

// NewPg connects to Postgres and ensures the schema exists.
func NewPg(ctx context.Context, cfg *config.Config) (*Pg, error) {
	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("pgvector store requires postgres_url")
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Pg{pool: pool, dim: cfg.EmbeddingDim}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Pg) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector;"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS transcript_segments (
			id SERIAL PRIMARY KEY,
			transcript_id VARCHAR(255) NOT NULL,
			segment_id VARCHAR(255) NOT NULL,
			start_time FLOAT NOT NULL,
			end_time FLOAT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d),
			UNIQUE(transcript_id, segment_id)
		);
	`, s.dim)
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create transcript_segments table: %w", err)
	}
	idx := "CREATE INDEX IF NOT EXISTS idx_transcript_segments_tid ON transcript_segments(transcript_id);"
	if _, err := s.pool.Exec(ctx, idx); err != nil {
		return fmt.Errorf("create transcript index: %w", err)
	}
	return nil
}

func (s *Pg) Upsert(ctx context.Context, transcriptID string, records []Record) (int, error) {
	count := 0
	for _, r := range records {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO transcript_segments (transcript_id, segment_id, start_time, end_time, text, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (transcript_id, segment_id)
			DO UPDATE SET
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				text = EXCLUDED.text,
				embedding = EXCLUDED.embedding
		`, transcriptID, r.SegmentID, r.Start, r.End, r.Text, pgvector.NewVector(r.Vector))
		if err != nil {
			return count, fmt.Errorf("%w: upsert segment %s: %v", core.ErrBackendUnavailable, r.SegmentID, err)
		}
		count++
	}
	return count, nil
}

func (s *Pg) Query(ctx context.Context, transcriptID string, vector []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 5
	}
	vec := pgvector.NewVector(vector)
	rows, err := s.pool.Query(ctx, `
		SELECT segment_id, start_time, end_time, text,
		       1 - (embedding <=> $1) AS similarity
		FROM transcript_segments
		WHERE transcript_id = $2
		ORDER BY embedding <=> $1, start_time
		LIMIT $3
	`, vec, transcriptID, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query segments: %v", core.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.SegmentID, &h.Start, &h.End, &h.Text, &h.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan hit: %v", core.ErrBackendUnavailable, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read hits: %v", core.ErrBackendUnavailable, err)
	}
	return hits, nil
}

func (s *Pg) Count(ctx context.Context, transcriptID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transcript_segments WHERE transcript_id = $1", transcriptID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count segments: %v", core.ErrBackendUnavailable, err)
	}
	return n, nil
}

func (s *Pg) Delete(ctx context.Context, transcriptID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM transcript_segments WHERE transcript_id = $1", transcriptID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete segments: %v", core.ErrBackendUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

// Close releases the connection pool.
func (s *Pg) Close() {
	s.pool.Close()
}
