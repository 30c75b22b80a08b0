package restyutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages[id] = contents
}

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "SESSION_ID", Value: "abc"})
		w.Write([]byte("HELLO"))
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	DumpExchanges(client, output, func(body []byte) string {
		return strings.ToLower(string(body))
	}, "userpass")

	_, err := client.R().
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Cookie", "SESSION_ID=secret").
		SetBody("username=student&userpass=e5e9fa1ba31ecd1ae84f75caaa474f3a663f05f4").
		Post("/login")
	require.NoError(t, err)

	require.Len(t, output.messages, 1)
	message := output.messages["0001-POST.txt"]
	require.Contains(t, message, "username=student&userpass=<redacted>")
	require.NotContains(t, message, "e5e9fa1b")
	require.NotContains(t, message, "SESSION_ID=secret")
	require.Contains(t, message, "Set-Cookie: SESSION_ID=abc")
	require.Contains(t, message, "200 ")
	require.True(t, strings.HasSuffix(message, "hello"))
}

func TestRedactForm(t *testing.T) {
	require.Equal(t, "a=1&b=<redacted>&c", redactForm("a=1&b=2&c", []string{"b"}))
	require.Equal(t, "a=1", redactForm("a=1", nil))
}
