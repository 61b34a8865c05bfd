// Package sink persists finished reports. A DocumentSink renders the report
// with a Renderer, writes the bytes to a Store under a unique name and records
// the artifact in the report catalog.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/viability/pkg/adapters"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/models/store"
	"github.com/rs/zerolog"
)

type Renderer interface {
	// Format is the artifact format and file extension, e.g. "pdf".
	Format() string
	ContentType() string
	Render(doc domain.Document) ([]byte, error)
}

// Store writes one artifact. A partially written artifact must never be
// visible under name.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (reference string, err error)
}

type Recorder interface {
	Add(ctx context.Context, report store.Report) error
}

type DocumentSink struct {
	renderer Renderer
	store    Store
	recorder Recorder
	now      func() time.Time
}

// New returns a sink. recorder may be nil.
func New(renderer Renderer, store Store, recorder Recorder) *DocumentSink {
	return &DocumentSink{
		renderer: renderer,
		store:    store,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *DocumentSink) Persist(ctx context.Context, report domain.Report) (domain.Artifact, error) {
	doc := adapters.MapReportDomainToDocument(report)
	name := doc.Name + "." + s.renderer.Format()
	logger := zerolog.Ctx(ctx).With().Str("report_id", report.ID).Str("artifact", name).Logger()

	data, err := s.renderer.Render(doc)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: render %s: %v", domain.ErrSink, s.renderer.Format(), err)
	}

	ref, err := s.store.Put(ctx, name, s.renderer.ContentType(), data)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: store %s: %v", domain.ErrSink, name, err)
	}

	artifact := domain.Artifact{
		ReportID:  report.ID,
		Name:      name,
		Reference: ref,
		Format:    s.renderer.Format(),
		CreatedAt: s.now().UTC(),
	}
	logger.Info().Str("reference", ref).Int("bytes", len(data)).Msg("report persisted")

	if s.recorder != nil {
		if err := s.recorder.Add(ctx, adapters.MapReportDomainToStore(report, artifact)); err != nil {
			logger.Warn().Err(err).Msg("failed to record report in catalog")
		}
	}
	return artifact, nil
}
