package imagegen

import (
	"encoding/base64"
	"iter"
	"strings"

	"github.com/rs/zerolog/log"
)

const payloadMarker = `"base64"`

// ImagePayloads yields the raw string value following each "base64" key in
// document order. The scan does not parse JSON; it tolerates truncated or
// irregular bodies and stops at the first marker without a complete value.
func ImagePayloads(body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := body
		for {
			i := strings.Index(rest, payloadMarker)
			if i < 0 {
				return
			}
			rest = strings.TrimLeft(rest[i+len(payloadMarker):], " \t\r\n")
			if !strings.HasPrefix(rest, ":") {
				// A "base64" string used as a value, not a key.
				continue
			}
			rest = strings.TrimLeft(rest[1:], " \t\r\n")
			if !strings.HasPrefix(rest, `"`) {
				continue
			}
			rest = rest[1:]
			end := strings.IndexByte(rest, '"')
			if end < 0 {
				return
			}
			value := rest[:end]
			rest = rest[end+1:]
			if !yield(value) {
				return
			}
		}
	}
}

// ExtractImagePayloads returns up to maxCount base64-decoded payloads from
// text. Values that are not valid base64 are skipped.
func ExtractImagePayloads(text string, maxCount int) [][]byte {
	if maxCount <= 0 {
		return nil
	}
	var out [][]byte
	for data := range decodedPayloads(text) {
		out = append(out, data)
		if len(out) == maxCount {
			break
		}
	}
	return out
}

// decodedPayloads yields the base64-decoded value of each payload in text,
// skipping values that do not decode.
func decodedPayloads(text string) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for raw := range ImagePayloads(text) {
			data, err := decodeBase64(raw)
			if err != nil {
				log.Debug().Err(err).Msg("Skipping payload with invalid base64")
				continue
			}
			if !yield(data) {
				return
			}
		}
	}
}

func decodeBase64(raw string) ([]byte, error) {
	cleaned := strings.NewReplacer(`\/`, "/", `\n`, "", `\r`, "", "\n", "", "\r", "", " ", "").Replace(raw)
	if cleaned == "" {
		return nil, errEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err == nil {
		return data, nil
	}
	if raw, rerr := base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "=")); rerr == nil {
		return raw, nil
	}
	return nil, err
}
