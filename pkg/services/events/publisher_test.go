package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func TestNATSPublisher_Publish(t *testing.T) {
	report := domain.Report{
		ID: "r1",
		Sections: []domain.Section{
			{Heading: "Market Analysis"},
			{Heading: "Market Prediction", Failed: true},
		},
	}
	artifact := domain.Artifact{Reference: "/reports/a.pdf"}

	t.Run("payload", func(t *testing.T) {
		c := new(mockConn)
		c.On("Publish", DefaultSubject, mock.MatchedBy(func(data []byte) bool {
			var evt ReportGenerated
			if err := json.Unmarshal(data, &evt); err != nil {
				return false
			}
			return evt.ReportID == "r1" && evt.Reference == "/reports/a.pdf" &&
				evt.Sections == 2 && len(evt.Failed) == 1 && evt.Failed[0] == "Market Prediction"
		})).Return(nil)

		err := NewNATSPublisher(c, "").Publish(context.Background(), report, artifact)

		require.NoError(t, err)
		c.AssertExpectations(t)
	})

	t.Run("connection error", func(t *testing.T) {
		c := new(mockConn)
		c.On("Publish", "custom.subject", mock.Anything).Return(errors.New("nats: connection closed"))

		err := NewNATSPublisher(c, "custom.subject").Publish(context.Background(), report, artifact)

		assert.ErrorContains(t, err, "connection closed")
	})
}
