package query

import (
	"net/url"
	"strings"
)

// Param is one query-string pair. The provider accepts repeated keys
// (refine.* in the legacy dialect), so parameters are kept as an ordered
// list rather than a url.Values map.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered query-string parameter list.
type Params []Param

// Encode serializes the parameters preserving their order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}
