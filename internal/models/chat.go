package models

// ChatResult is the outcome of a single dispatched prompt: the generated
// text plus which provider produced it.
type ChatResult struct {
	Response     string `json:"response"`
	ProviderName string `json:"providerName"`
}
