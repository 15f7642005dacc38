package http

import (
	"math"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/board-server/internal/service/messages"
)

func TestIndex_Placeholder(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "No message yet")
	assert.Contains(t, body, `value="Times New Roman"`)
	assert.Contains(t, body, `value="#cd763e"`)
}

func TestSubmitForm_RedirectsAndRenders(t *testing.T) {
	ts := newTestServer(t, nil)

	form := url.Values{
		"message":    {"  <b>Hi</b> there  "},
		"bgColor":    {"#3EBFCD"},
		"fontFamily": {"Times New Roman"},
		"textSize":   {"small"},
	}
	resp := ts.do(t, http.MethodPost, "/", form.Encode(), formBody)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))

	resp = ts.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "&lt;b&gt;Hi&lt;/b&gt; there", "text is escaped")
	assert.Contains(t, body, "background: #3ebfcd")
	assert.Contains(t, body, "font-size: 1.5rem")
	assert.NotContains(t, body, "No message yet")
}

func TestSubmitForm_RejectionShownInline(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := ts.do(t, http.MethodPost, "/", url.Values{"message": {strings.Repeat("z", 101)}}.Encode(), formBody)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Message too long (max 100 chars)")

	resp = ts.do(t, http.MethodPost, "/", url.Values{"bgColor": {"#a6ff9d"}}.Encode(), formBody)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Message must be a string")
}

func TestAdminPage_ListsAndDeletes(t *testing.T) {
	ts := newTestServer(t, nil)
	seedMessages(t, ts, 3)

	resp := ts.do(t, http.MethodGet, "/admin", "", asAdmin)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Signed in as "+testAdminUser)
	assert.Contains(t, body, "Total 3")
	assert.Contains(t, body, "msg 3")
	assert.Contains(t, body, `action="/admin/messages/3/delete"`)

	resp = ts.do(t, http.MethodPost, "/admin/messages/3/delete", url.Values{"page": {"1"}}.Encode(), formBody, asAdmin)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/admin?page=1", resp.Header().Get("Location"))

	resp = ts.do(t, http.MethodGet, "/admin", "", asAdmin)
	assert.Contains(t, resp.Body.String(), "Total 2")

	resp = ts.do(t, http.MethodPost, "/admin/messages/x/delete", "", asAdmin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		want        bool
	}{
		{page: 1, limit: 20, total: 0, want: false},
		{page: 1, limit: 20, total: 20, want: false},
		{page: 1, limit: 20, total: 21, want: true},
		{page: 2, limit: 20, total: 41, want: true},
		{page: 3, limit: 20, total: 41, want: false},
		{page: 1<<60 + 1, limit: 16, total: 3, want: false},
		{page: math.MaxInt, limit: 20, total: 3, want: false},
	}
	for _, tt := range tests {
		l := &messages.Listing{Page: tt.page, Limit: tt.limit, Total: tt.total}
		assert.Equal(t, tt.want, hasNextPage(l), "page=%d limit=%d total=%d", tt.page, tt.limit, tt.total)
	}
}

func TestAdminPage_FarBeyondLastPage(t *testing.T) {
	ts := newTestServer(t, nil)
	seedMessages(t, ts, 3)

	resp := ts.do(t, http.MethodGet, "/admin?page=1152921504606846977", "", asAdmin)
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "Total 3")
	assert.NotContains(t, body, "msg 1")
}
