// Package httpserver wires the parse -> route/classify -> partition ->
// print -> fan-out -> merge pipeline behind a single POST /graphql handler,
// grounded on the teacher's cmd/testServer.go http.ServeMux +
// zap.NewProduction() construction style.
package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	al "github.com/jensneuse/abstractlogger"

	"github.com/edgeql/partitioner/internal/config"
	ilog "github.com/edgeql/partitioner/internal/pkg/log"
	"github.com/edgeql/partitioner/pkg/ast"
	"github.com/edgeql/partitioner/pkg/astparser"
	"github.com/edgeql/partitioner/pkg/astprinter"
	"github.com/edgeql/partitioner/pkg/backend"
	"github.com/edgeql/partitioner/pkg/classifier"
	"github.com/edgeql/partitioner/pkg/executor"
	"github.com/edgeql/partitioner/pkg/graphqlerr"
	"github.com/edgeql/partitioner/pkg/merger"
	"github.com/edgeql/partitioner/pkg/partition"
	"github.com/edgeql/partitioner/pkg/routing"
)

const longQueryThreshold = 500 * time.Millisecond

// requestBody is the ingress body shape of spec §6:
// {"query": string, "variables"?: object, "operationName"?: string}.
type requestBody struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
	OperationName string          `json:"operationName"`
}

// Handler serves POST /graphql, fanning a partitioned query out to
// cfg.BackendTable and merging the results back into one response.
type Handler struct {
	Config *config.Config
	Logger al.Logger
	Client *backend.Client
}

// NewHandler constructs a Handler from a loaded Config.
func NewHandler(cfg *config.Config, logger al.Logger) *Handler {
	return &Handler{
		Config: cfg,
		Logger: logger,
		Client: backend.NewClient(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/graphql" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.handleGraphQL(w, r)
}

func (h *Handler) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqLog := ilog.ForRequest(h.Logger)

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromMessage("failed to read request body"))
		return
	}

	var body requestBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromMessage("request body is not valid JSON"))
		return
	}

	reqLog = reqLog.WithOperationName(body.OperationName)

	doc, report := astparser.Parse(body.Query)
	if report.HasErrors() {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromReport(report))
		return
	}

	classification, report := classifier.Classify(doc, body.OperationName)
	if report.HasErrors() {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromReport(report))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Config.RequestTimeout)
	defer cancel()

	baseURL := h.Config.BackendTable.Resolve(backend.Env(r.Header.Get("X-Backend-Env")))
	forwardHeaders := h.Config.HeaderAllowList.Filter(r.Header)

	if classification.Disposition == classifier.PassThrough {
		h.servePassThrough(ctx, w, rawBody, baseURL, forwardHeaders)
		ilog.WarnIfSlow(reqLog, start, longQueryThreshold)
		return
	}

	op := classification.Operation
	behavior := h.Config.RoutingTable.Lookup(op.Name)

	switch behavior {
	case routing.DoNotProcess:
		h.servePassThrough(ctx, w, rawBody, baseURL, forwardHeaders)
	case routing.DoNotPartition:
		h.serveFlatCache(ctx, w, doc, op, body.Variables, baseURL, forwardHeaders)
	default:
		h.servePartitioned(ctx, w, doc, op, body.Variables, baseURL, forwardHeaders)
	}

	ilog.WarnIfSlow(reqLog, start, longQueryThreshold, al.String("operation_name", op.Name))
}

func writeGraphQLError(w http.ResponseWriter, status int, resp graphqlerr.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) servePassThrough(ctx context.Context, w http.ResponseWriter, rawBody []byte, baseURL string, headers http.Header) {
	status, respBody, contentType, err := h.Client.SendPassThrough(ctx, baseURL, rawBody, headers)
	if err != nil {
		writeGraphQLError(w, http.StatusBadGateway, graphqlerr.FromMessage("pass-through request to origin failed"))
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = w.Write(respBody)
}

func (h *Handler) servePartitioned(ctx context.Context, w http.ResponseWriter, doc *ast.Document, op *ast.OperationDefinition, variables json.RawMessage, baseURL string, headers http.Header) {
	fragments := fragmentTable(doc)

	result, report := partition.Partition(op, fragments)
	if report.HasErrors() {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromReport(report))
		return
	}

	reqs := make([]executor.Request, len(result.SubQueries))
	for i, sq := range result.SubQueries {
		filtered, err := astprinter.FilterVariables(variables, sq)
		if err != nil {
			writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromMessage("failed to filter variables for sub-query"))
			return
		}
		reqs[i] = executor.Request{
			ResponseKey:   sq.ResponseKey,
			OperationName: sq.Name,
			Query:         astprinter.Print(sq),
			Variables:     filtered,
		}
	}

	results := executor.FanOut(ctx, h.Client, baseURL, headers, reqs, h.Config.SubRequestTimeout)

	h.purgeFailedCacheEntries(ctx, baseURL, reqs, results)

	mergedBody, status, err := merger.Merge(result.Plan, results)
	if err != nil {
		writeGraphQLError(w, http.StatusInternalServerError, graphqlerr.FromMessage("failed to merge sub-query responses"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(mergedBody)
}

func (h *Handler) serveFlatCache(ctx context.Context, w http.ResponseWriter, doc *ast.Document, op *ast.OperationDefinition, variables json.RawMessage, baseURL string, headers http.Header) {
	fragments := fragmentTable(doc)
	closure, report := partition.FragmentClosureForOperation(op, fragments)
	if report.HasErrors() {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromReport(report))
		return
	}

	query := astprinter.PrintOperation(op, closure)
	filtered, err := astprinter.FilterVariablesForOperation(variables, op)
	if err != nil {
		writeGraphQLError(w, http.StatusBadRequest, graphqlerr.FromMessage("failed to filter variables"))
		return
	}

	status, body, err := h.Client.Get(ctx, baseURL, map[string]string{
		"query":         query,
		"variables":     string(filtered),
		"operationName": op.Name,
	}, headers)
	if err != nil {
		writeGraphQLError(w, http.StatusBadGateway, graphqlerr.FromMessage("flat-cache request to origin failed"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// purgeFailedCacheEntries asks the origin to evict the cache entry for any
// sub-request whose response carried GraphQL errors, per
// original_source/src/worker.rs's purge-on-error behavior. Best-effort: a
// purge failure is never surfaced to the client.
func (h *Handler) purgeFailedCacheEntries(ctx context.Context, baseURL string, reqs []executor.Request, results []executor.Result) {
	for i, r := range results {
		if r.Err != nil || !responseCarriesErrors(r.RawBody) {
			continue
		}
		query := url.Values{}
		query.Set("query", reqs[i].Query)
		query.Set("variables", string(reqs[i].Variables))
		query.Set("operationName", reqs[i].OperationName)
		_ = h.Client.PurgeCache(ctx, baseURL+"/graphql?"+query.Encode())
	}
}

func fragmentTable(doc *ast.Document) map[string]*ast.FragmentDefinition {
	table := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		table[f.Name] = f
	}
	return table
}

func responseCarriesErrors(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var parsed struct {
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return false
	}
	return len(parsed.Errors) > 0
}
