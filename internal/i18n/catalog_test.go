package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryKeyResolves(t *testing.T) {
	for key := range entries {
		got := T(key)
		require.NotEqual(t, key, got, "key %q is not registered", key)
		assert.NotEmpty(t, got)
	}
}

func TestFormattedEntries(t *testing.T) {
	assert.Equal(t, "فشل تحميل الفيديو: Not Found", T(KeyDownloadFailed, "Not Found"))
	assert.Equal(t, "خطأ: boom", T(KeyErrorBanner, "boom"))
}

func TestLoadingMessageClamps(t *testing.T) {
	require.Equal(t, 4, LoadingMessageCount())
	assert.Equal(t, T("generate.loading.0"), LoadingMessage(-3))
	assert.Equal(t, T("generate.loading.3"), LoadingMessage(3))
	assert.Equal(t, LoadingMessage(3), LoadingMessage(99))
	assert.NotEqual(t, LoadingMessage(0), LoadingMessage(1))
}

func TestTag(t *testing.T) {
	assert.Equal(t, "ar", Tag())
}
