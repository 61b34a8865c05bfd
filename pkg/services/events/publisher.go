// Package events announces persisted reports to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const DefaultSubject = "viability.report.generated"

// ReportGenerated is the payload of one notification.
type ReportGenerated struct {
	ReportID  string   `json:"report_id"`
	Reference string   `json:"reference"`
	Sections  int      `json:"sections"`
	Failed    []string `json:"failed"`
}

type conn interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	conn    conn
	subject string
}

// Connect dials the NATS server at url. Call Close when done.
func Connect(url, subject string, logger zerolog.Logger) (*NATSPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("viability"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return NewNATSPublisher(nc, subject), nc, nil
}

func NewNATSPublisher(c conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: c, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, report domain.Report, artifact domain.Artifact) error {
	failed := report.FailedSections()
	if failed == nil {
		failed = []string{}
	}
	data, err := json.Marshal(ReportGenerated{
		ReportID:  report.ID,
		Reference: artifact.Reference,
		Sections:  len(report.Sections),
		Failed:    failed,
	})
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	zerolog.Ctx(ctx).Debug().Str("subject", p.subject).Str("report_id", report.ID).Msg("report event published")
	return nil
}
