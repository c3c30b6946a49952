package core

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse is the body of upload acknowledgements and of every error
// response.
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ItemSummary is a single entry in a bucket listing.
type ItemSummary struct {
	Name         string `json:"name"`
	LastModified int64  `json:"lastModified"`
}

// ItemContent is the JSON representation of a retrieved item. Content is
// encoded as standard base64.
type ItemContent struct {
	Name         string `json:"name"`
	LastModified int64  `json:"lastModified"`
	Content      []byte `json:"content"`
}
