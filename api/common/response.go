package common

// Response 统一响应包装
type Response struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}
