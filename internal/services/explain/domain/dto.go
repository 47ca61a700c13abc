package domain

// Request is the POST /explain body
type Request struct {
	Code     string `json:"code" validate:"required" example:"function fib(n) { return n < 2 ? n : fib(n-1) + fib(n-2) }"`
	Language string `json:"language" validate:"required,oneof=javascript python cpp java sql other" example:"javascript"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=explain cp" example:"explain"`
}

// Result is the POST /explain response and the payload of the stream's done event
type Result struct {
	Explanation string `json:"explanation"`
	HistoryID   string `json:"historyId"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	Mode        string `json:"mode"`
}

// Chunk is the payload of one stream chunk event
type Chunk struct {
	Text string `json:"text"`
}
