package codes

// 响应码：HTTP 风格的业务码，前端据此分支。
const (
	CODE_SUCCESS           = 200
	CODE_ERR_BAD_PARAMS    = 400
	CODE_ERR_OBJ_NOT_FOUND = 404
	CODE_ERR_UNKNOWN       = 500
	CODE_ERR_NOT_READY     = 503
)
