package filter

import "errors"

// ErrConfiguration 过滤器参数不合法
var ErrConfiguration = errors.New("bloom filter configuration error")
