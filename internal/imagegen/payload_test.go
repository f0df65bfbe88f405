package imagegen

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePayloadsDocumentOrder(t *testing.T) {
	body := `{"artifacts":[{"base64":"QQ=="},{"seed":1,"base64" : "Qg=="},{"base64":"Qw=="}]}`

	got := slices.Collect(ImagePayloads(body))

	assert.Equal(t, []string{"QQ==", "Qg==", "Qw=="}, got)
}

func TestImagePayloadsSkipsMarkerUsedAsValue(t *testing.T) {
	body := `{"encoding":"base64","data":{"base64":"QQ=="}}`

	got := slices.Collect(ImagePayloads(body))

	assert.Equal(t, []string{"QQ=="}, got)
}

func TestImagePayloadsStopsOnTruncatedValue(t *testing.T) {
	body := `{"artifacts":[{"base64":"QQ=="},{"base64":"Qg`

	got := slices.Collect(ImagePayloads(body))

	assert.Equal(t, []string{"QQ=="}, got)
}

func TestImagePayloadsNonStringValue(t *testing.T) {
	body := `{"base64": null, "other": {"base64": "QQ=="}}`

	got := slices.Collect(ImagePayloads(body))

	assert.Equal(t, []string{"QQ=="}, got)
}

func TestImagePayloadsEmpty(t *testing.T) {
	assert.Empty(t, slices.Collect(ImagePayloads("")))
	assert.Empty(t, slices.Collect(ImagePayloads(`{"artifacts":[]}`)))
	assert.Empty(t, slices.Collect(ImagePayloads(`"base64"`)))
}

func TestExtractImagePayloads(t *testing.T) {
	body := `{"artifacts":[{"base64":"QQ=="},{"base64":"!!not base64!!"},{"base64":"Qg=="},{"base64":"Qw=="}]}`

	got := ExtractImagePayloads(body, 2)

	require.Len(t, got, 2)
	assert.Equal(t, []byte("A"), got[0])
	assert.Equal(t, []byte("B"), got[1])
}

func TestExtractImagePayloadsMaxCount(t *testing.T) {
	body := `{"base64":"QQ=="}`

	assert.Nil(t, ExtractImagePayloads(body, 0))
	assert.Len(t, ExtractImagePayloads(body, 5), 1)
}

func TestExtractImagePayloadsEscapedSlashes(t *testing.T) {
	// "/w==" decodes to 0xFF; JSON encoders may emit it as "\/w==".
	body := `{"base64":"\/w=="}`

	got := ExtractImagePayloads(body, 1)

	require.Len(t, got, 1)
	assert.Equal(t, []byte{0xFF}, got[0])
}

func TestDecodedPayloadsMatchesExtract(t *testing.T) {
	body := `{"artifacts":[{"base64":"%%%"},{"base64":"QQ=="},{"base64":"Qg"},{"base64":"Qw=="}]}`

	got := slices.Collect(decodedPayloads(body))

	assert.Equal(t, [][]byte{[]byte("A"), []byte("B"), []byte("C")}, got)
	assert.Equal(t, got, ExtractImagePayloads(body, 10))
}
