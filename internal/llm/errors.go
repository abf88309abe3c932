package llm

import "fmt"

// FailureReason classifies why a provider call produced no usable text.
type FailureReason string

const (
	ReasonHTTPStatus    FailureReason = "http_status"
	ReasonEmptyResponse FailureReason = "empty_response"
	ReasonNetwork       FailureReason = "network"
)

// ProviderError is a transport-level failure from one provider call. Status
// is zero for network errors and empty responses.
type ProviderError struct {
	Provider string
	Status   int
	Reason   FailureReason
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Reason, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Reason, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// HTTPStatus reports the upstream status code so the retry classifier can
// recognize rate-limit rejections.
func (e *ProviderError) HTTPStatus() int { return e.Status }
