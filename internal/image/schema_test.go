package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaEntries(t *testing.T) {
	schema, err := IdeogramV3.compile()
	require.NoError(t, err)

	entries, err := schema.entries([]byte(`{"data":[
		{"url":"https://cdn.example/a.png","seed":12345},
		{"image_base64":"aGVsbG8=","seed":"7"},
		{"url":"data:image/png;base64,aGk="},
		{"url":null}
	]}`))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, entry{url: "https://cdn.example/a.png", seed: "12345"}, entries[0])
	assert.Equal(t, entry{inline: []byte("hello"), seed: "7"}, entries[1])
	assert.Equal(t, entry{inline: []byte("hi")}, entries[2])
	assert.Equal(t, entry{}, entries[3])
}

func TestSchemaMessage(t *testing.T) {
	schema, err := IdeogramV3.compile()
	require.NoError(t, err)

	assert.Equal(t, "slow down", schema.errorMessage([]byte(`{"message":"slow down","error":"ignored"}`)))
	assert.Equal(t, `["a","b"]`, schema.errorMessage([]byte(`{"detail":["a","b"]}`)))
	assert.Equal(t, "", schema.errorMessage([]byte(`{"status":"bad"}`)))
	assert.Equal(t, "", schema.errorMessage([]byte(`oops`)))
}

func TestSchemaCustomLayout(t *testing.T) {
	schema, err := Schema{
		Images:  ".result.images",
		URL:     ".link // empty",
		Inline:  "empty",
		Seed:    "empty",
		Message: ".msg // empty",
	}.compile()
	require.NoError(t, err)

	entries, err := schema.entries([]byte(`{"result":{"images":[{"link":"https://x/1"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []entry{{url: "https://x/1"}}, entries)
}

func TestSchemaCompileError(t *testing.T) {
	_, err := Schema{Images: ".data[", URL: ".", Inline: ".", Seed: ".", Message: "."}.compile()
	assert.ErrorContains(t, err, "images")
}

func TestDecodeDataURL(t *testing.T) {
	data, err := decodeDataURL("data:image/webp;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)

	_, err = decodeDataURL("data:text/plain,hi")
	assert.Error(t, err)
}
