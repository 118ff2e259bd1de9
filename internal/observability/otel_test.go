package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 0.1, SampleRatio(0))
	assert.Equal(t, 0.1, SampleRatio(-2))
	assert.Equal(t, 0.5, SampleRatio(0.5))
	assert.Equal(t, 1.0, SampleRatio(3))
}

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, ParseHeaders(""))
	assert.Nil(t, ParseHeaders("junk,=x"))
	assert.Equal(t, map[string]string{"api-key": "abc", "team": "core"}, ParseHeaders(" api-key=abc , team=core,broken"))
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{})
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}
