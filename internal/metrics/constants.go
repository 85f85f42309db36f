package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "karkkilista_http_requests_total"
	MetricNameHTTPRequestDuration  = "karkkilista_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "karkkilista_http_requests_in_flight"

	MetricNameRPCRequestsTotal    = "karkkilista_rpc_requests_total"
	MetricNameActiveSubscriptions = "karkkilista_active_subscriptions"
	MetricNameFetchRequestsTotal  = "karkkilista_fetch_requests_total"
	MetricNameItemsAdded          = "karkkilista_items_added_total"
	MetricNameItemsRemoved        = "karkkilista_items_removed_total"
	MetricNameRegistrations       = "karkkilista_registrations_total"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"

	HelpTextRPCRequestsTotal    = "Total number of RPCs by procedure and result code"
	HelpTextActiveSubscriptions = "Current number of live collection streams"
	HelpTextFetchRequestsTotal  = "Total number of fetch proxy requests by outcome"
	HelpTextItemsAdded          = "Total number of items added to lists"
	HelpTextItemsRemoved        = "Total number of items removed from lists"
	HelpTextRegistrations       = "Total number of registered accounts"
)

// Label names
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelProcedure  = "procedure"
	LabelCode       = "code"
	LabelCollection = "collection"
	LabelOutcome    = "outcome"
)

// Fetch proxy outcomes
const (
	FetchOutcomeOK         = "ok"
	FetchOutcomeMissingURL = "missing_url"
	FetchOutcomeError      = "error"
)

// Subscription collections
const (
	CollectionOwners = "owners"
	CollectionItems  = "items"
)

// HTTPLatencyBuckets range from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
