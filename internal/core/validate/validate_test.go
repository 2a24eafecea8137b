package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionName(t *testing.T) {
	assert.NoError(t, CollectionName("docs"))
	assert.NoError(t, CollectionName("My Notes-2"))
	assert.NoError(t, CollectionName("a_b"))

	assert.Error(t, CollectionName(""))
	assert.Error(t, CollectionName("x"))
	assert.Error(t, CollectionName(strings.Repeat("a", 51)))
	assert.Error(t, CollectionName("bad!name"))
	assert.Error(t, CollectionName("semi;colon"))
	assert.Error(t, CollectionName(" leading"))
	assert.Error(t, CollectionName("trailing "))
}

func TestDimension(t *testing.T) {
	assert.NoError(t, Dimension(1))
	assert.NoError(t, Dimension(1024))
	assert.NoError(t, Dimension(4096))

	assert.Error(t, Dimension(0))
	assert.Error(t, Dimension(-1))
	assert.Error(t, Dimension(4097))
}

func TestCommonDimension(t *testing.T) {
	assert.True(t, CommonDimension(1024))
	assert.True(t, CommonDimension(1536))
	assert.False(t, CommonDimension(1000))
}

func TestSearchQuery(t *testing.T) {
	assert.NoError(t, SearchQuery("how does chunking work"))
	assert.Error(t, SearchQuery(""))
	assert.Error(t, SearchQuery("   "))
	assert.Error(t, SearchQuery(strings.Repeat("q", 1001)))
}

func TestLimit(t *testing.T) {
	assert.NoError(t, Limit(1, 100))
	assert.NoError(t, Limit(100, 100))
	assert.Error(t, Limit(0, 100))
	assert.Error(t, Limit(101, 100))
}

func TestMetadataPair(t *testing.T) {
	key, val, err := MetadataPair("topic=testing")
	require.NoError(t, err)
	assert.Equal(t, "topic", key)
	assert.Equal(t, "testing", val)

	_, val, err = MetadataPair("count=42")
	require.NoError(t, err)
	assert.Equal(t, 42, val)

	_, val, err = MetadataPair("score=0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, val)

	_, val, err = MetadataPair("done=true")
	require.NoError(t, err)
	assert.Equal(t, true, val)

	_, val, err = MetadataPair(`tags=["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, val)

	_, val, err = MetadataPair("note=a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", val)

	_, _, err = MetadataPair("novalue")
	assert.Error(t, err)

	_, _, err = MetadataPair("=value")
	assert.Error(t, err)
}
