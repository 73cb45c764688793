package brave

import "github.com/wangxiaojing2413/brave/reporter"

// Endpoint identifies the local service producing spans, or a remote
// service a span talked to.
type Endpoint = reporter.Endpoint
