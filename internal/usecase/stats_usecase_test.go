package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_Healthy(t *testing.T) {
	rec := &callRecorder{}
	lastIndexed := time.Now().UTC()

	vector := &mockVectorRepo{rec: rec, statsRes: &VectorIndexStats{Count: 120, Healthy: true}}
	metadata := &mockMetadataRepo{rec: rec, countRes: 118, lastIdxTime: &lastIndexed}

	uc := NewStatsUC(vector, metadata, nopLogger{})

	res, err := uc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(118), res.TotalIndexed)
	assert.Equal(t, int64(118), res.MetadataRows)
	assert.Equal(t, uint64(120), res.VectorCount)
	assert.True(t, res.VectorIndexHealthy)
	assert.Equal(t, &lastIndexed, res.LastIndexedAt)
}

func TestStats_VectorIndexDownStillResponds(t *testing.T) {
	rec := &callRecorder{}
	vector := &mockVectorRepo{rec: rec, statsErr: errors.New("qdrant down")}
	metadata := &mockMetadataRepo{rec: rec, countRes: 10}

	uc := NewStatsUC(vector, metadata, nopLogger{})

	res, err := uc.Stats(context.Background())
	require.NoError(t, err)

	assert.False(t, res.VectorIndexHealthy)
	assert.Equal(t, int64(10), res.TotalIndexed)
}

func TestStats_MetadataDownStillResponds(t *testing.T) {
	rec := &callRecorder{}
	vector := &mockVectorRepo{rec: rec, statsRes: &VectorIndexStats{Count: 5, Healthy: true}}
	metadata := &mockMetadataRepo{
		rec:        rec,
		countErr:   errors.New("postgres down"),
		lastIdxErr: errors.New("postgres down"),
	}

	uc := NewStatsUC(vector, metadata, nopLogger{})

	res, err := uc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.TotalIndexed)
	assert.Nil(t, res.LastIndexedAt)
	assert.True(t, res.VectorIndexHealthy)
	assert.Equal(t, uint64(5), res.VectorCount)
}
