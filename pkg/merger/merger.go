// Package merger assembles the final GraphQL response envelope from a
// RecompositionPlan and its aligned sub-responses, per spec §4.6. It builds
// the envelope key-by-key in plan order with sjson rather than through an
// intermediate map[string]any, so re-encoding never loses the
// GraphQL-faithful key ordering §5 requires; buger/jsonparser pulls
// `data.<key>` and `errors`/`extensions` out of each raw sub-response
// without a full unmarshal, the same streaming-extraction style the
// teacher corpus favors.
package merger

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/edgeql/partitioner/pkg/executor"
	"github.com/edgeql/partitioner/pkg/partition"
)

// Merge builds the merged envelope from plan (ordered response keys) and
// results (aligned by index with plan). It returns the encoded JSON body
// and the HTTP status to return to the caller.
func Merge(plan partition.Plan, results []executor.Result) ([]byte, int, error) {
	body := []byte(`{"data":{}}`)
	var errorsJSON []byte = []byte("[]")
	extensions := []byte("{}")
	haveExtensions := false
	successCount := 0

	for i, entry := range plan {
		if i >= len(results) {
			break
		}
		result := results[i]

		if result.Err != nil {
			var setErr error
			body, setErr = sjson.SetBytes(body, "data."+sjsonEscape(entry.ResponseKey), nil)
			if setErr != nil {
				return nil, 0, setErr
			}
			errorsJSON = appendSyntheticError(errorsJSON, entry.ResponseKey, result.Err)
			continue
		}

		successCount++

		fieldData, _, _, err := jsonparser.Get(result.RawBody, "data", entry.ResponseKey)
		switch err {
		case nil:
			body, err = sjson.SetRawBytes(body, "data."+sjsonEscape(entry.ResponseKey), fieldData)
			if err != nil {
				return nil, 0, err
			}
		case jsonparser.KeyPathNotFoundError:
			body, err = sjson.SetBytes(body, "data."+sjsonEscape(entry.ResponseKey), nil)
			if err != nil {
				return nil, 0, err
			}
		default:
			return nil, 0, err
		}

		if subErrors, _, _, err := jsonparser.Get(result.RawBody, "errors"); err == nil {
			errorsJSON = appendRawErrors(errorsJSON, subErrors)
		}

		if ext, _, _, err := jsonparser.Get(result.RawBody, "extensions"); err == nil {
			extensions = shallowMergeExtensions(extensions, ext)
			haveExtensions = true
		}
	}

	if parsedErrors := gjson.ParseBytes(errorsJSON); parsedErrors.IsArray() && len(parsedErrors.Array()) > 0 {
		var err error
		body, err = sjson.SetRawBytes(body, "errors", errorsJSON)
		if err != nil {
			return nil, 0, err
		}
	}

	if haveExtensions {
		var err error
		body, err = sjson.SetRawBytes(body, "extensions", extensions)
		if err != nil {
			return nil, 0, err
		}
	}

	status := 200
	if successCount == 0 && len(plan) > 0 {
		status = 502
	}

	return body, status, nil
}

// sjsonEscape backslash-escapes the path metacharacters sjson treats
// specially ('.', '*', '?'). Response keys are plain GraphQL names
// ([_A-Za-z][_0-9A-Za-z]*) so this is never actually exercised in practice,
// but guards defensively against a key landing here unescaped.
func sjsonEscape(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '.' || c == '*' || c == '?' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

func appendSyntheticError(errorsJSON []byte, responseKey string, fetchErr *executor.FetchError) []byte {
	message := fmt.Sprintf("sub-request for %q failed: %s", responseKey, describeFetchError(fetchErr))
	entry := fmt.Sprintf(`{"message":%q,"path":[%q]}`, message, responseKey)
	out, err := sjson.SetRawBytes(errorsJSON, "-1", []byte(entry))
	if err != nil {
		return errorsJSON
	}
	return out
}

func describeFetchError(e *executor.FetchError) string {
	switch e.Kind {
	case executor.Timeout:
		return "request timed out"
	case executor.Network:
		return "network error: " + e.Message
	case executor.HTTPStatus:
		return fmt.Sprintf("origin returned status %d", e.StatusCode)
	case executor.InvalidJSON:
		return "origin response was not valid JSON"
	default:
		return e.Message
	}
}

func appendRawErrors(errorsJSON []byte, subErrorsArray []byte) []byte {
	out := errorsJSON
	result := gjson.ParseBytes(subErrorsArray)
	if !result.IsArray() {
		return out
	}
	result.ForEach(func(_, value gjson.Result) bool {
		var err error
		out, err = sjson.SetRawBytes(out, "-1", []byte(value.Raw))
		if err != nil {
			return false
		}
		return true
	})
	return out
}

// shallowMergeExtensions merges newExtensions into existing, overwriting
// keys that already exist — later sub-responses in plan order win, per
// §4.6's "later keys overwrite earlier" policy. Walked with gjson.ForEach,
// the same object-walk shape original_source/src/json_merge.rs's merge()
// uses over serde_json::Value::Object.
func shallowMergeExtensions(existing []byte, newExtensions []byte) []byte {
	out := existing
	gjson.ParseBytes(newExtensions).ForEach(func(key, value gjson.Result) bool {
		var err error
		out, err = sjson.SetRawBytes(out, sjsonEscape(key.String()), []byte(value.Raw))
		if err != nil {
			return false
		}
		return true
	})
	return out
}
