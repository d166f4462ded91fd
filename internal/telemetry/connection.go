// Package telemetry delivers structured log records to a remote ingestion
// endpoint. Delivery is fire-and-forget: records queue in memory, ship in
// batches, and failures never surface to the application.
package telemetry

import "strings"

// Target is the parsed form of the opaque connection string: a
// semicolon-separated key=value list carrying at minimum an instrumentation
// key and an ingestion URL. Unknown keys are ignored and nothing beyond
// non-emptiness is validated upstream.
type Target struct {
	InstrumentationKey string
	IngestionEndpoint  string
	Raw                string
}

// ParseTarget splits the connection string best-effort. It never fails;
// missing pieces just leave fields empty.
func ParseTarget(raw string) Target {
	t := Target{Raw: raw}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "instrumentationkey":
			t.InstrumentationKey = strings.TrimSpace(value)
		case "ingestionendpoint":
			t.IngestionEndpoint = strings.TrimSpace(value)
		}
	}
	return t
}

// IngestURL returns the full ingestion URL, or "" when no endpoint is known.
func (t Target) IngestURL() string {
	if t.IngestionEndpoint == "" {
		return ""
	}
	return strings.TrimRight(t.IngestionEndpoint, "/") + "/v2/track"
}
