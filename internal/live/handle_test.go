package live

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedgeshield/riskdesk/internal/entity"
	"github.com/hedgeshield/riskdesk/internal/tenant"
)

type countingReloader struct{ cols []entity.Collection }

func (c *countingReloader) Background(_ context.Context, cols ...entity.Collection) {
	c.cols = append(c.cols, cols...)
}

func TestHandle_FiltersEvents(t *testing.T) {
	rec := &countingReloader{}
	s, err := New("http://localhost:8080", tenant.New("acme"), rec)
	require.NoError(t, err)

	ctx := context.Background()
	s.handle(ctx, "acme", []byte(`{"type":"changed","company":"acme","collection":"contracts"}`))
	s.handle(ctx, "acme", []byte(`{"type":"changed","company":"globex","collection":"orders"}`))
	s.handle(ctx, "acme", []byte(`{"type":"changed","company":"acme","collection":"ledger"}`))
	s.handle(ctx, "acme", []byte(`not json`))

	assert.Equal(t, []entity.Collection{entity.Contracts}, rec.cols)
}
