// Package ingest builds the word/text concordance: every sentence of every
// text is annotated against the vocabulary and the matches are written to
// the database in batches, with per-text checkpoints so a build can resume.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/milim/pkg/annotate"
	"github.com/japaniel/milim/pkg/corpus"
	"github.com/japaniel/milim/pkg/db"
	"go.uber.org/zap"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Ingester writes concordance rows for the sentences of a text.
type Ingester struct {
	DB        *sql.DB
	Analyzer  *annotate.Analyzer
	BatchSize int
	Logger    *zap.Logger
	// OnProgress is called periodically with the number of processed sentences and total sentences.
	OnProgress func(current, total int)

	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, analyzer *annotate.Analyzer) *Ingester {
	return &Ingester{
		DB:        conn,
		Analyzer:  analyzer,
		BatchSize: 50,
		Logger:    zap.NewNop(),
		Workers:   4,
	}
}

// wordData is one vocabulary entry found in a sentence.
type wordData struct {
	EntryID       string
	Hebrew        string
	Pronunciation string
	English       string
	Count         int
}

// processedSentence holds the result of processing a sentence before DB ingestion
type processedSentence struct {
	Index    int
	Sentence string
	Words    []wordData
	Error    error
}

// Ingest annotates sentences concurrently and records every vocabulary
// match against textID. Writes are applied in sentence order, and the last
// written sentence index is checkpointed so a later call resumes after it.
// It returns the number of word occurrences recorded.
func (ig *Ingester) Ingest(ctx context.Context, textID int64, sentences []string) (int, error) {
	if ig.Analyzer == nil {
		return 0, errors.New("ingest: no analyzer")
	}
	log := ig.logger().With(zap.Int64("text", textID))

	lastProcessed, err := db.GetTextProgress(ig.DB, textID)
	if err != nil {
		log.Warn("failed to retrieve progress", zap.Error(err))
		lastProcessed = -1
	}
	if lastProcessed >= 0 {
		log.Info("resuming", zap.Int("from", lastProcessed+1))
	}

	totalSentences := len(sentences)
	startIdx := lastProcessed + 1
	if startIdx >= totalSentences {
		return 0, nil
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, ig.Workers*2)
	} else {
		wp = NewWorkerPool(ig.Workers, ig.Workers*2)
	}
	resultCh := make(chan processedSentence, max(ig.Workers, 1)*2)
	closedResultCh := false
	doneCh := make(chan error, 1)

	var totalLinks int64

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bw := NewBatchWriter(ig.DB, ig.BatchSize, 100*time.Millisecond)
	bw.Logger = log
	var batchErr error
	var batchErrMu sync.Mutex
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
		cancel()
	}

	// Cleanup on every return path: stop workers, close resultCh, flush batches.
	defer func() {
		wp.Close()
		if !closedResultCh {
			close(resultCh)
		}
		_ = bw.Close()
	}()

	wp.Start(ctx)

	// A batch that fails rolls back its checkpoint, so no later batch may
	// commit and move the checkpoint past the lost sentences.
	persist := func(item processedSentence) error {
		if err := bw.Err(); err != nil {
			return err
		}
		return bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			if err := bw.Err(); err != nil {
				return fmt.Errorf("sentence %d skipped after failed batch: %w", item.Index, err)
			}
			for _, w := range item.Words {
				wordID, err := db.UpsertWord(tx, w.EntryID, w.Hebrew, w.Pronunciation, w.English)
				if err != nil {
					return fmt.Errorf("failed to persist word %s: %w", w.EntryID, err)
				}
				if err := db.LinkWordToText(tx, wordID, textID, item.Sentence, w.Count); err != nil {
					return fmt.Errorf("failed to link word %s: %w", w.EntryID, err)
				}
				atomic.AddInt64(&totalLinks, int64(w.Count))
			}
			if err := db.UpdateTextProgress(tx, textID, item.Index); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
			return nil
		})
	}

	// Consumer: re-orders results by sentence index before writing.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedSentence)
		nextIdx := startIdx

		drain := func() error {
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					return nil
				}
				delete(buffer, nextIdx)
				if err := persist(item); err != nil {
					return err
				}
				if ig.OnProgress != nil && ig.BatchSize > 0 && (nextIdx+1)%ig.BatchSize == 0 {
					ig.OnProgress(nextIdx+1, totalSentences)
				}
				nextIdx++
			}
		}

		for {
			select {
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			default:
			}

			var res processedSentence
			var ok bool
			select {
			case res, ok = <-resultCh:
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			}

			if !ok {
				if err := drain(); err != nil {
					cancel()
					doneCh <- err
					return
				}
				if err := ctx.Err(); err != nil {
					doneCh <- err
					return
				}
				if ig.OnProgress != nil {
					ig.OnProgress(totalSentences, totalSentences)
				}
				doneCh <- nil
				return
			}

			if res.Error != nil {
				// Stop producers so they don't block writing to resultCh.
				cancel()
				doneCh <- res.Error
				return
			}
			buffer[res.Index] = res
			if err := drain(); err != nil {
				cancel()
				doneCh <- err
				return
			}
		}
	}()

	// Producer: one annotation job per sentence.
Loop:
	for i := startIdx; i < totalSentences; i++ {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		idx := i
		sent := sentences[i]
		job := func(ctx context.Context) error {
			res := ig.processSentence(idx, sent)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			return 0, err
		}
	}

	// Workers must be gone before resultCh is closed.
	wp.Close()
	close(resultCh)
	closedResultCh = true

	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}

	// A failed batch cancels the build, so it outranks the cancellation it caused.
	batchErrMu.Lock()
	if batchErr != nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()

	return int(atomic.LoadInt64(&totalLinks)), consumerErr
}

// processSentence annotates a sentence and counts each matched entry once
// per occurrence, in first-seen order.
func (ig *Ingester) processSentence(index int, sentence string) processedSentence {
	counts := make(map[string]int)
	var words []wordData

	for _, span := range ig.Analyzer.Analyze(sentence, "") {
		if !span.Interactive || span.Entry == nil {
			continue
		}
		if _, seen := counts[span.WordID]; !seen {
			words = append(words, wordData{
				EntryID:       span.Entry.ID,
				Hebrew:        span.Entry.Hebrew,
				Pronunciation: span.Entry.PronunciationText,
				English:       span.Entry.PrimaryEnglish(),
			})
		}
		counts[span.WordID]++
	}
	for i := range words {
		words[i].Count = counts[words[i].EntryID]
	}

	return processedSentence{
		Index:    index,
		Sentence: strings.TrimSpace(sentence),
		Words:    words,
	}
}

func (ig *Ingester) logger() *zap.Logger {
	if ig.Logger == nil {
		return zap.NewNop()
	}
	return ig.Logger
}

// Sentences splits text into trimmed, non-empty sentences. The result is
// stable for a given text, so indexes can be used as checkpoints.
func Sentences(text string) []string {
	var out []string
	for _, s := range annotate.SplitSentences(text) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Stats summarises a concordance build.
type Stats struct {
	Texts       int
	Sentences   int
	Occurrences int
}

// IndexCorpus records every text and ingests its sentences. Texts already
// fully processed by an earlier run are skipped.
func (ig *Ingester) IndexCorpus(ctx context.Context, texts []corpus.Text) (Stats, error) {
	var stats Stats
	log := ig.logger()
	start := time.Now()

	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		id, err := db.UpsertText(ig.DB, t.ID, t.Title, t.Category)
		if err != nil {
			return stats, err
		}
		sentences := Sentences(t.HebrewText)
		n, err := ig.Ingest(ctx, id, sentences)
		if err != nil {
			return stats, fmt.Errorf("index text %s: %w", t.ID, err)
		}
		stats.Texts++
		stats.Sentences += len(sentences)
		stats.Occurrences += n
		log.Debug("text indexed", zap.String("text", t.ID), zap.Int("sentences", len(sentences)), zap.Int("occurrences", n))
	}

	log.Info("concordance built",
		zap.Int("texts", stats.Texts),
		zap.Int("sentences", stats.Sentences),
		zap.Int("occurrences", stats.Occurrences),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}
