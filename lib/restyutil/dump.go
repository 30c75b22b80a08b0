// Package restyutil dumps the HTTP exchanges of a resty client for debugging
// what the portal actually answered.
package restyutil

import (
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// BodyDecoder turns a raw body into text, DumpExchanges falls back to reading
// bodies as UTF-8 when it is nil.
type BodyDecoder func(body []byte) string

// DumpExchanges writes every completed request/response pair of client to
// output, one id per exchange. Form fields listed in redact are masked.
func DumpExchanges(client *resty.Client, output Output, decode BodyDecoder, redact ...string) {
	if decode == nil {
		decode = func(body []byte) string { return string(body) }
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(
			fmt.Sprintf("%04d-%s.txt", id, res.Request.Method),
			formatHttpMessage(res, decode, redact),
		)
		return nil
	})
}
