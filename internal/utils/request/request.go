package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// No retry: an automatically re-sent order call is a duplicate order. Retry
// policy, if any, belongs to a wrapping layer.
var Request = resty.New().SetTransport(&http.Transport{
	Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
}).SetTimeout(10 * time.Second)
