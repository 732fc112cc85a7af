package storage

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyKeepsSanitizedFilename(t *testing.T) {
	key := ObjectKey("My Photo (1).JPG")

	parts := strings.SplitN(key, "-", 2)
	require.Len(t, parts, 2)

	_, err := strconv.ParseInt(parts[0], 10, 64)
	require.NoError(t, err, "key must start with a millisecond timestamp")
	assert.Equal(t, "MyPhoto1.JPG", parts[1])
}

func TestObjectKeyStripsPathComponents(t *testing.T) {
	key := ObjectKey("../../etc/passwd")

	assert.False(t, strings.Contains(key, "/"))
	assert.True(t, strings.HasSuffix(key, "-passwd"))
}

func TestObjectKeyFallsBackToUUID(t *testing.T) {
	key := ObjectKey("!!!")

	parts := strings.SplitN(key, "-", 2)
	require.Len(t, parts, 2)

	_, err := uuid.Parse(parts[1])
	assert.NoError(t, err, "empty sanitized name must fall back to a uuid")
}

func TestPublicURLShape(t *testing.T) {
	u := &Uploader{bucket: "journeys-media", region: "eu-west-1"}

	assert.Equal(t,
		"https://journeys-media.s3.eu-west-1.amazonaws.com/123-photo.png",
		u.PublicURL("123-photo.png"),
	)
}
