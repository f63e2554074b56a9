package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/nanban-api/internal/constants"
)

func TestCursorCodec_RoundTrip(t *testing.T) {
	codec := NewCursorCodec("secret")

	token, err := codec.Encode("tasks:project=1", 42)
	require.NoError(t, err)

	after, err := codec.Decode("tasks:project=1", token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), after)
}

func TestCursorCodec_EmptyStartsAtBeginning(t *testing.T) {
	after, err := NewCursorCodec("secret").Decode("anything", "")
	require.NoError(t, err)
	assert.Zero(t, after)
}

func TestCursorCodec_RejectsForeignScope(t *testing.T) {
	codec := NewCursorCodec("secret")
	token, err := codec.Encode("tasks:project=1", 42)
	require.NoError(t, err)

	_, err = codec.Decode("tasks:project=2", token)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCursorCodec_RejectsOtherSecretAndGarbage(t *testing.T) {
	token, err := NewCursorCodec("one").Encode("scope", 7)
	require.NoError(t, err)

	_, err = NewCursorCodec("two").Decode("scope", token)
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = NewCursorCodec("one").Decode("scope", "42")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-corp", Slugify("  Acme Corp! "))
	assert.Equal(t, "ops-2025", Slugify("Ops -- 2025"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestGetCursorParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=5&cursor=abc", nil)
	params := GetCursorParams(c)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=100000", nil)
	assert.Equal(t, constants.DefaultPageSize, GetCursorParams(c).Limit)
}
