package backend

import "strings"

// MinAnonKeyLength is the shortest anon key accepted as plausible. Real keys
// are JWTs well above this; anything shorter is a typo or a placeholder.
const MinAnonKeyLength = 20

// Config holds the endpoint and public key of the managed backend.
type Config struct {
	URL     string `json:"url"`
	AnonKey string `json:"anon_key"`
}

// Complete reports whether both values are present.
func (c Config) Complete() bool {
	return c.URL != "" && c.AnonKey != ""
}

// IsConfigured reports whether c looks usable. It validates shape only;
// whether the key is accepted is proven by the first backend call.
func IsConfigured(c Config) bool {
	return c.URL != "" &&
		strings.HasPrefix(c.URL, "https://") &&
		len(c.AnonKey) > MinAnonKeyLength
}

// placeholder keeps the client constructible before setup. Calls against it fail.
var placeholder = Config{
	URL:     "https://placeholder.invalid",
	AnonKey: "placeholder",
}
