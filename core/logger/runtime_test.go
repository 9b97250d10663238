package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateMetaRoundTrip(t *testing.T) {
	ctx := WithUpdateMeta(context.Background(), 101, 7, 42)

	assert.Equal(t, 101, UpdateIDFrom(ctx))
	assert.Equal(t, int64(7), UserIDFrom(ctx))
	assert.Equal(t, int64(42), ChatIDFrom(ctx))

	empty := context.Background()
	assert.Zero(t, UpdateIDFrom(empty))
	assert.Zero(t, UserIDFrom(empty))
	assert.Zero(t, ChatIDFrom(empty))
}

func TestBuildRID(t *testing.T) {
	assert.Equal(t, "101:42:7", BuildRID(101, 42, 7))
}

func TestSummarizeStrings(t *testing.T) {
	joined, truncated := SummarizeStrings([]string{"a", "b", "c"}, 5)
	assert.Equal(t, "a, b, c", joined)
	assert.False(t, truncated)

	joined, truncated = SummarizeStrings([]string{"a", "b", "c"}, 2)
	assert.Equal(t, "a, b", joined)
	assert.True(t, truncated)

	joined, truncated = SummarizeStrings(nil, 0)
	assert.Empty(t, joined)
	assert.False(t, truncated)
}
