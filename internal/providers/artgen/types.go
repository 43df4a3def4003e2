package artgen

// RequestState enumerates provider-side generation request states. A request
// moves through states monotonically; once succeeded or failed it never changes.
type RequestState string

const (
	StateStarting   RequestState = "starting"
	StateProcessing RequestState = "processing"
	StateSucceeded  RequestState = "succeeded"
	StateFailed     RequestState = "failed"
)

// Terminal reports whether the state is final.
func (s RequestState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// SubmitRequest describes one generation call. SourceImage, when set, switches
// the provider into image-to-image mode.
type SubmitRequest struct {
	Prompt      string
	Width       int
	Height      int
	StyleParams map[string]string
	SourceImage []byte
	SourceMIME  string
}

// RequestStatus is the provider's view of one request at poll time.
type RequestStatus struct {
	ID           string
	State        RequestState
	ImageURL     string
	ErrorMessage string
}

// RequestHandle identifies an accepted request. When the provider executed
// synchronously the handle already carries the terminal status, and Poll
// answers from it without another network call.
type RequestHandle struct {
	ID       string
	resolved *RequestStatus
}

// Resolved returns the cached terminal status, if any.
func (h *RequestHandle) Resolved() *RequestStatus {
	if h == nil || h.resolved == nil {
		return nil
	}
	out := *h.resolved
	return &out
}
