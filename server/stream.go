package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/siherrmann/recipegraph/core/retrieval"
)

// Stream event names in emission order.
const (
	EventReasoning = "reasoning"
	EventParsing   = "parsing"
	EventQuerying  = "querying"
	EventComplete  = "complete"
	EventResults   = "results"
	EventError     = "error"
)

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	id      uuid.UUID
	seq     int
}

func (e *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	e.seq++
	if _, err := fmt.Fprintf(e.w, "id: %s-%d\nevent: %s\ndata: %s\n\n", e.id, e.seq, event, payload); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// handleSearchStream runs a search and reports its phases as server-sent events.
// Failures after the stream started are sent as an error event.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	query, limit, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := &eventStream{w: w, flusher: flusher, id: uuid.New()}
	fail := func(operation string, err error) {
		status := statusFor(err)
		s.logger.Warn("Stream failed", slog.String("operation", operation), slog.String("error", err.Error()))
		_ = stream.send(EventError, map[string]any{"status": status, "error": errorMessage(status, err)})
	}

	if err := stream.send(EventReasoning, map[string]string{"message": "Understanding your query", "query": query}); err != nil {
		return
	}

	intent, err := s.searcher.ExtractIntent(r.Context(), query)
	if err != nil {
		fail("extract intent", err)
		return
	}
	if err := stream.send(EventParsing, map[string]any{"parsed_intent": intent, "reasoning": intent.Reasoning}); err != nil {
		return
	}

	if err := stream.send(EventQuerying, map[string]any{"routing_explanation": retrieval.Explain(intent)}); err != nil {
		return
	}

	outcome, err := s.searcher.SearchWithIntent(r.Context(), query, intent, limit)
	if err != nil {
		fail("search", err)
		return
	}
	if err := stream.send(EventComplete, map[string]any{"result_count": len(outcome.Results), "source_breakdown": outcome.SourceBreakdown}); err != nil {
		return
	}

	_ = stream.send(EventResults, newSearchResponse(outcome))
}
