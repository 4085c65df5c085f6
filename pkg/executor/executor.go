// Package executor issues the N concurrent GET sub-requests a partitioned
// operation produces and collects their responses, per spec §4.5.
// Concurrency uses golang.org/x/sync/errgroup rather than hand-rolled
// goroutine/channel bookkeeping — the idiomatic match for "dispatch all,
// wait for all" fan-out, and already a teacher-corpus dependency.
package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgeql/partitioner/pkg/backend"
)

// FetchErrorKind enumerates the sub-request failure modes of §4.5.
type FetchErrorKind int

const (
	Network FetchErrorKind = iota
	HTTPStatus
	Timeout
	InvalidJSON
)

func (k FetchErrorKind) String() string {
	switch k {
	case Network:
		return "Network"
	case HTTPStatus:
		return "HttpStatus"
	case Timeout:
		return "Timeout"
	case InvalidJSON:
		return "InvalidJson"
	default:
		return "Unknown"
	}
}

// FetchError describes why a sub-request did not produce usable JSON.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // valid when Kind == HTTPStatus
	Message    string
}

func (e *FetchError) Error() string {
	return e.Message
}

// Request is one sub-request to dispatch: the printed SubQuery text, its
// filtered variables JSON, the response key it will project into, and the
// synthetic operation name to pass as the GraphQL operationName parameter.
type Request struct {
	ResponseKey   string
	OperationName string
	Query         string
	Variables     []byte
}

// Result is the outcome of one dispatched Request, aligned by index with
// the input slice. Exactly one of RawBody or Err is set.
type Result struct {
	ResponseKey string
	RawBody     []byte
	Err         *FetchError
}

// FanOut issues one GET per req concurrently against baseURL, waits for all
// to settle (or the shared ctx deadline to expire), and returns results in
// the same order as reqs.
func FanOut(ctx context.Context, client *backend.Client, baseURL string, headers http.Header, reqs []Request, perRequestTimeout time.Duration) []Result {
	results := make([]Result, len(reqs))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		group.Go(func() error {
			results[i] = dispatch(groupCtx, client, baseURL, headers, req, perRequestTimeout)
			return nil
		})
	}
	// Errors are captured per-result, not propagated through the group:
	// one sub-request's failure must never cancel its siblings (§7,
	// "per-sub-request errors are locally contained").
	_ = group.Wait()

	return results
}

func dispatch(ctx context.Context, client *backend.Client, baseURL string, headers http.Header, req Request, timeout time.Duration) Result {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	query := map[string]string{
		"query":         req.Query,
		"variables":     string(req.Variables),
		"operationName": req.OperationName,
	}

	status, body, err := client.Get(reqCtx, baseURL, query, headers)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return Result{ResponseKey: req.ResponseKey, Err: &FetchError{
				Kind:    Timeout,
				Message: "sub-request timed out",
			}}
		}
		return Result{ResponseKey: req.ResponseKey, Err: &FetchError{
			Kind:    Network,
			Message: err.Error(),
		}}
	}

	if status < 200 || status >= 300 {
		return Result{ResponseKey: req.ResponseKey, Err: &FetchError{
			Kind:       HTTPStatus,
			StatusCode: status,
			Message:    "origin returned non-2xx status",
		}}
	}

	if !json.Valid(body) {
		return Result{ResponseKey: req.ResponseKey, Err: &FetchError{
			Kind:    InvalidJSON,
			Message: "origin response was not valid JSON",
		}}
	}

	return Result{ResponseKey: req.ResponseKey, RawBody: body}
}
