package vector

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"videoquery/config"
)

// openPg connects to the database named by POSTGRES_URL, skipping the test
// when none is configured. The segment table is recreated at the test's
// dimension so runs are independent of prior state.
func openPg(t *testing.T, dim int) *Pg {
	t.Helper()
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}
	ctx := context.Background()
	s, err := NewPg(ctx, &config.Config{PostgresURL: url, EmbeddingDim: dim})
	if err != nil {
		t.Fatalf("NewPg failed: %v", err)
	}
	t.Cleanup(s.Close)
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS transcript_segments"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func pgRecord(i int, dim int) Record {
	v := make([]float32, dim)
	v[i%dim] = 1
	return Record{
		SegmentID: fmt.Sprintf("%d", i),
		Start:     float64(i),
		End:       float64(i + 1),
		Text:      fmt.Sprintf("segment %d", i),
		Vector:    v,
	}
}

func TestPgConcurrentQueries(t *testing.T) {
	const dim = 8
	s := openPg(t, dim)
	ctx := context.Background()

	records := make([]Record, 0, dim)
	for i := 0; i < dim; i++ {
		records = append(records, pgRecord(i, dim))
	}
	if _, err := s.Upsert(ctx, "t", records); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Queries from separate request goroutines must not contend for a
	// single connection.
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			q := make([]float32, dim)
			q[g%dim] = 1
			hits, err := s.Query(ctx, "t", q, 3)
			if err != nil {
				errs <- err
				return
			}
			if len(hits) == 0 {
				errs <- fmt.Errorf("goroutine %d: no hits", g)
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent query: %v", err)
	}
}

func TestPgUpsertIdempotentAndDelete(t *testing.T) {
	const dim = 8
	s := openPg(t, dim)
	ctx := context.Background()

	recs := []Record{pgRecord(0, dim), pgRecord(1, dim)}
	if _, err := s.Upsert(ctx, "t", recs); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := s.Upsert(ctx, "t", recs); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if n, _ := s.Count(ctx, "t"); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	n, err := s.Delete(ctx, "t")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d rows, want 2", n)
	}
	if n, _ := s.Count(ctx, "t"); n != 0 {
		t.Errorf("rows survived delete: %d", n)
	}
}
