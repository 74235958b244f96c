package entity

// Route binds a URL path to a named view. The view template is resolved lazily.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	View string `json:"view"`
}
