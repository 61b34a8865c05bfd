package sink

import (
	"context"
	"fmt"

	"github.com/de-tools/viability/pkg/config"
)

func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "pdf":
		return PDFRenderer{}, nil
	case "markdown":
		return MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func NewStore(ctx context.Context, cfg config.SinkConfig) (Store, error) {
	switch cfg.Kind {
	case "filesystem":
		return NewFilesystemStore(cfg.Dir, cfg.PublicPrefix)
	case "s3":
		return NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Prefix)
	case "azure":
		return NewAzureBlobStore(cfg.AccountURL, cfg.Container)
	default:
		return nil, fmt.Errorf("unsupported sink kind: %s", cfg.Kind)
	}
}

// NewFromConfig wires the configured renderer and store. recorder may be nil.
func NewFromConfig(ctx context.Context, cfg config.SinkConfig, recorder Recorder) (*DocumentSink, error) {
	renderer, err := NewRenderer(cfg.Format)
	if err != nil {
		return nil, err
	}
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(renderer, store, recorder), nil
}
