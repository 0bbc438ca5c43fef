package apitypes

// Shared API response structs used by both handlers and clients.

type ApiError struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type StatusResponse struct {
	Mode            string  `json:"mode"`
	TimeoutMs       int64   `json:"timeoutMs"`
	SinceLastMs     int64   `json:"sinceLastMs"`
	LastSequence    uint32  `json:"lastSequence"`
	Frames          uint64  `json:"frames"`
	Malformed       uint64  `json:"malformed"`
	TransientErrors uint64  `json:"transientErrors"`
	Ticks           uint64  `json:"ticks"`
	Axes            []int16 `json:"axes"`
	Buttons         []int   `json:"buttons"`
}
