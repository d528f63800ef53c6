package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthServiceCheck(t *testing.T) {
	datasets := NewDatasetService(nil, nil, nil)
	svc := NewHealthService("1.2.3", "2026-08-30", datasets, nil)
	ctx := context.Background()

	t.Run("before load", func(t *testing.T) {
		status := svc.Check(ctx)
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "1.2.3", status.Version)
		assert.NotEmpty(t, status.Runtime.GoVersion)
		assert.False(t, status.Dataset.Loaded)
	})

	t.Run("after load", func(t *testing.T) {
		result, err := datasets.Load(ctx, strings.NewReader(sampleCSV))
		require.NoError(t, err)

		status := svc.Check(ctx)
		assert.True(t, status.Dataset.Loaded)
		assert.Equal(t, result.ContentHash, status.Dataset.ContentHash)
		assert.Equal(t, 3, status.Dataset.Rows)
		assert.False(t, status.Dataset.LoadedAt.IsZero())
	})
}
