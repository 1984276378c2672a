package vectorindex

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
)

// Writer accepts catalog documents. SQLiteIndex and OpenSearchIndex implement it.
type Writer interface {
	Add(ctx context.Context, doc Document) error
}

// CatalogImage is a raw catalog entry to embed and index.
type CatalogImage struct {
	ID    string
	Image []byte
	Text  string // optional description embedded together with the image
}

// IngestOptions configures Ingest.
type IngestOptions struct {
	Concurrency int
	Logger      logging.Logger
}

// Ingest embeds each catalog image and writes it to w. Embedding calls run
// with bounded concurrency; the first error cancels the remaining work.
// It returns the number of documents written.
func Ingest(ctx context.Context, embedder core.Embedder, w Writer, images []CatalogImage, optFns ...func(o *IngestOptions)) (int, error) {
	opts := IngestOptions{Concurrency: 4, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	var written atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)

	for _, img := range images {
		eg.Go(func() error {
			vec, err := embedder.Embed(egCtx, core.EmbeddingInput{Image: img.Image, Text: img.Text})
			if err != nil {
				return fmt.Errorf("embed %s: %w", img.ID, err)
			}
			if err := w.Add(egCtx, Document{ID: img.ID, Vector: vec, Image: img.Image}); err != nil {
				return fmt.Errorf("index %s: %w", img.ID, err)
			}
			written.Add(1)
			opts.Logger.Debug("vectorindex.ingest.document", "id", img.ID)
			return nil
		})
	}

	err := eg.Wait()
	n := int(written.Load())
	opts.Logger.Info("vectorindex.ingest.complete", "written", n, "total", len(images), "error", err != nil)

	return n, err
}
