package relay

// Result is the wire shape shared by the relay endpoint and the relay action:
// {"success":true,"imageUrl":...} or {"success":false,"error":...}.
type Result struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

func Succeeded(imageURL string) Result {
	return Result{Success: true, ImageURL: imageURL}
}

func Failed(msg string) Result {
	return Result{Success: false, Error: msg}
}

// GenerateRequest is the body accepted by the relay endpoint.
type GenerateRequest struct {
	Text string `json:"text"`
}
