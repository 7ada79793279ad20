package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Cache     string `json:"cache,omitempty"`
}

// DataResponse wraps every successful API payload
type DataResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta describes the request that produced a DataResponse
type Meta struct {
	Season   string `json:"season,omitempty"`
	Count    int    `json:"count"`
	Notice   string `json:"notice,omitempty"`
	CachedAt string `json:"cached_at,omitempty"`
}

// NextRaceResponse is the next calendar entry with a countdown
type NextRaceResponse struct {
	Race      Race   `json:"race"`
	Countdown string `json:"countdown"`
	LocalTime string `json:"local_time,omitempty"`
}

// RaceResultsResponse is the classification of one race
type RaceResultsResponse struct {
	Race    Race         `json:"race"`
	Results []RaceResult `json:"results"`
	Podium  []RaceResult `json:"podium"`
}

// LookupResponse is the result of an id-by-name lookup
type LookupResponse struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// InvalidateRequest asks every instance to drop cached keys under Prefix
type InvalidateRequest struct {
	Prefix string `json:"prefix"`
}

// InvalidateResponse reports the local effect of an invalidation
type InvalidateResponse struct {
	Prefix    string `json:"prefix"`
	Removed   int    `json:"removed"`
	Broadcast bool   `json:"broadcast"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
