package embeddings

import "context"

// ProgressFunc receives the number of texts embedded so far and the total.
type ProgressFunc func(done, total int)

// progressEmbedder splits large embedding requests into sub-batches so
// progress can be reported between them. Output order is unchanged.
type progressEmbedder struct {
	inner     Embedder
	batchSize int
	report    ProgressFunc
}

// WithProgress wraps an embedder with batch-wise progress reporting.
// batchSize caps how many texts go to the inner embedder per call.
func WithProgress(inner Embedder, batchSize int, report ProgressFunc) Embedder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &progressEmbedder{inner: inner, batchSize: batchSize, report: report}
}

func (p *progressEmbedder) Name() string    { return p.inner.Name() }
func (p *progressEmbedder) Dimensions() int { return p.inner.Dimensions() }

func (p *progressEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) <= p.batchSize {
		out, err := p.inner.Embed(ctx, texts)
		if err == nil && p.report != nil {
			p.report(len(texts), len(texts))
		}
		return out, err
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += p.batchSize {
		end := i + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.inner.Embed(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if p.report != nil {
			p.report(len(all), len(texts))
		}
	}
	return all, nil
}
