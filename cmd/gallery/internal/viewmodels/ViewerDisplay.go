package viewmodels

// ViewerDisplay tells the browser what to draw for the open album.
type ViewerDisplay struct {
	BaseViewModel

	Album         string `json:"album"`
	Index         int    `json:"index"`
	Total         int    `json:"total"`
	FullURL       string `json:"fullUrl,omitempty"`
	URL           string `json:"url,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	IsPlaceholder bool   `json:"isPlaceholder"`
	Loading       bool   `json:"loading"`
	Pending       int    `json:"pending"`
	Cached        int    `json:"cached"`
}
