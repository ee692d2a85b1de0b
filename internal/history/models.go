package history

import (
	"time"

	"github.com/artpar/curl2json/internal/core"
)

// Entry represents a single executed command and its response.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Command is the curl command that reproduces the request.
	Command string `json:"command"`

	// Request data
	RequestMethod  string            `json:"request_method"`
	RequestURL     string            `json:"request_url"`
	RequestHeaders map[string]string `json:"request_headers,omitempty"`
	RequestBody    string            `json:"request_body,omitempty"`

	// Response data
	ResponseStatus      int               `json:"response_status"`
	ResponseStatusText  string            `json:"response_status_text,omitempty"`
	ResponseHeaders     map[string]string `json:"response_headers,omitempty"`
	ResponseBody        string            `json:"response_body,omitempty"`
	ResponseContentType string            `json:"response_content_type,omitempty"`
	ResponseTime        int64             `json:"response_time"` // milliseconds
	ResponseSize        int64             `json:"response_size"` // bytes

	// Assertion results
	AssertionsPassed int `json:"assertions_passed"`
	AssertionsFailed int `json:"assertions_failed"`
}

// NewEntry captures an executed request and its response.
func NewEntry(command string, req *core.Request, resp *core.Response) Entry {
	body, _ := req.Body()
	timing := resp.Timing()

	timestamp := timing.Start
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return Entry{
		Timestamp:           timestamp,
		Command:             command,
		RequestMethod:       req.Method(),
		RequestURL:          req.URL(),
		RequestHeaders:      req.Headers(),
		RequestBody:         body,
		ResponseStatus:      resp.Status().Code(),
		ResponseStatusText:  resp.Status().Text(),
		ResponseHeaders:     resp.Headers(),
		ResponseBody:        string(resp.Raw()),
		ResponseContentType: resp.ContentType(),
		ResponseTime:        timing.Total.Milliseconds(),
		ResponseSize:        resp.Size(),
	}
}

// QueryOptions specifies filters and pagination for history queries.
type QueryOptions struct {
	// Filters
	Method     string    // Filter by HTTP method
	URLPattern string    // Filter by URL pattern (SQL LIKE syntax)
	StatusMin  int       // Minimum status code
	StatusMax  int       // Maximum status code
	After      time.Time // Only entries after this time
	Before     time.Time // Only entries before this time

	// Pagination
	Limit  int // Maximum number of results (0 = no limit)
	Offset int // Number of results to skip
}

// PruneOptions specifies criteria for pruning old history entries.
type PruneOptions struct {
	OlderThan time.Duration // Delete entries older than this duration
	KeepLast  int           // Keep only the last N entries
}

// PruneResult contains the result of a prune operation.
type PruneResult struct {
	DeletedCount int64 `json:"deleted_count"`
	FreedBytes   int64 `json:"freed_bytes"`
}
