package vector

import (
	"context"
	"sort"
	"sync"
)

// Memory is a brute-force in-memory store. It backs tests and deployments
// that do not need the data to outlive the process.
type Memory struct {
	mu         sync.RWMutex
	partitions map[string]map[string]Record // transcriptID -> segmentID -> record
}

func NewMemory() *Memory {
	return &Memory{partitions: make(map[string]map[string]Record)}
}

func (m *Memory) Upsert(ctx context.Context, transcriptID string, records []Record) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	part, ok := m.partitions[transcriptID]
	if !ok {
		part = make(map[string]Record, len(records))
		m.partitions[transcriptID] = part
	}
	for _, r := range records {
		part[r.SegmentID] = r
	}
	return len(records), nil
}

func (m *Memory) Query(ctx context.Context, transcriptID string, vector []float32, topK int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	part := m.partitions[transcriptID]
	hits := make([]Hit, 0, len(part))
	for _, r := range part {
		hits = append(hits, Hit{
			SegmentID:  r.SegmentID,
			Start:      r.Start,
			End:        r.End,
			Text:       r.Text,
			Similarity: Cosine(vector, r.Vector),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Start < hits[j].Start
	})
	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) Count(ctx context.Context, transcriptID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.partitions[transcriptID]), nil
}

func (m *Memory) Delete(ctx context.Context, transcriptID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.partitions[transcriptID])
	delete(m.partitions, transcriptID)
	return n, nil
}
