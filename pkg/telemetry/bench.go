package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/parsdesk/dana/pkg/types"
)

// BenchmarkRecord is one evaluated case flattened into a Parquet row.
type BenchmarkRecord struct {
	RunID             string    `parquet:"run_id"`
	Timestamp         time.Time `parquet:"timestamp"`
	CaseID            string    `parquet:"case_id"`
	Question          string    `parquet:"question"`
	GeneratedAnswer   string    `parquet:"generated_answer"`
	RetrievedSources  string    `parquet:"retrieved_sources"` // comma-joined
	KeywordRecall     float64   `parquet:"keyword_recall"`
	SimilarityScore   float64   `parquet:"similarity_score"`
	FaithfulnessScore float64   `parquet:"faithfulness_score"`
	RelevanceScore    float64   `parquet:"relevance_score"`
	Judged            bool      `parquet:"judged"`
	CompositeScore    float64   `parquet:"composite_score"`
	TimeTakenMs       int64     `parquet:"time_taken_ms"`
}

// BenchmarkWriter persists benchmark runs as Parquet files, one file per run.
type BenchmarkWriter struct {
	outputDir string
}

// NewBenchmarkWriter creates a BenchmarkWriter rooted at outputDir.
func NewBenchmarkWriter(outputDir string) (*BenchmarkWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create benchmark directory: %w", err)
	}
	return &BenchmarkWriter{outputDir: outputDir}, nil
}

// WriteRun writes one benchmark run to a new Parquet file and returns the
// run id and the file path.
func (w *BenchmarkWriter) WriteRun(results []types.BenchmarkResult) (runID, path string, err error) {
	if len(results) == 0 {
		return "", "", fmt.Errorf("benchmark run is empty")
	}

	runID = uuid.New().String()
	now := time.Now().UTC()

	records := make([]BenchmarkRecord, 0, len(results))
	for _, r := range results {
		records = append(records, BenchmarkRecord{
			RunID:             runID,
			Timestamp:         now,
			CaseID:            r.Case.ID,
			Question:          r.Case.Question,
			GeneratedAnswer:   r.GeneratedAnswer,
			RetrievedSources:  strings.Join(r.RetrievedSources, ","),
			KeywordRecall:     r.KeywordRecall,
			SimilarityScore:   r.SimilarityScore,
			FaithfulnessScore: r.FaithfulnessScore,
			RelevanceScore:    r.RelevanceScore,
			Judged:            r.Judged,
			CompositeScore:    r.CompositeScore,
			TimeTakenMs:       r.TimeTakenMs,
		})
	}

	filename := fmt.Sprintf("benchmark_%s_%s.parquet", now.Format("20060102_150405"), runID[:8])
	path = filepath.Join(w.outputDir, filename)

	if err := parquet.WriteFile(path, records); err != nil {
		return "", "", fmt.Errorf("failed to write benchmark parquet file: %w", err)
	}
	return runID, path, nil
}
