package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{}
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRequestBody(req *http.Request, redact []string) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return redactForm(string(readBody), redact)
}

// redactForm masks the values of the given fields of a form encoded body,
// the rest of the body is kept byte for byte.
func redactForm(body string, fields []string) string {
	if len(fields) == 0 {
		return body
	}
	pairs := strings.Split(body, "&")
	for i, pair := range pairs {
		key, _, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		name, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		for _, field := range fields {
			if name == field {
				pairs[i] = key + "=<redacted>"
			}
		}
	}
	return strings.Join(pairs, "&")
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const messageInfoTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatHttpMessage(res *resty.Response, decode BodyDecoder, redact []string) string {
	requestHeaders := ""
	requestBody := ""
	if res.Request.RawRequest != nil {
		headers := res.Request.RawRequest.Header.Clone()
		if headers.Get("Cookie") != "" {
			headers.Set("Cookie", "<redacted>")
		}
		requestHeaders = formatHeaders(headers)
		requestBody = formatRequestBody(res.Request.RawRequest, redact)
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		redirected, err := res.RawResponse.Location()
		if err == nil {
			responseUrl = redirected.String()
		}
	}

	return fmt.Sprintf(
		messageInfoTemplate,

		res.Request.Method, res.Request.URL,
		requestHeaders,
		requestBody,

		strconv.Itoa(res.StatusCode()), responseUrl,
		formatHeaders(res.Header()),
		decode(res.Body()),
	)
}
