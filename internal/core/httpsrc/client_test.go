package httpsrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/solatis/sttable/internal/grid"
)

func TestWithQuery(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		params map[string]any
		want   url.Values
	}{
		{
			name:   "scalars",
			url:    "http://x/api",
			params: map[string]any{"pi": 2, "ps": 10, "sort": "age,descend"},
			want:   url.Values{"pi": {"2"}, "ps": {"10"}, "sort": {"age,descend"}},
		},
		{
			name:   "slices repeat the key",
			url:    "http://x/api",
			params: map[string]any{"sort": []string{"a,ascend", "b,descend"}, "status": []any{"on", 1.0}},
			want:   url.Values{"sort": {"a,ascend", "b,descend"}, "status": {"on", "1"}},
		},
		{
			name:   "existing query kept and nil skipped",
			url:    "http://x/api?token=t",
			params: map[string]any{"pi": 1, "q": nil},
			want:   url.Values{"token": {"t"}, "pi": {"1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withQuery(tt.url, tt.params)
			if err != nil {
				t.Fatalf("withQuery() error = %v", err)
			}
			u, _ := url.Parse(got)
			if !reflect.DeepEqual(u.Query(), tt.want) {
				t.Errorf("query = %v, want %v", u.Query(), tt.want)
			}
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery, gotAuth = r.URL.Query(), r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"count":3,"items":[{"id":1},{"id":2}]}}`))
	}))
	defer srv.Close()

	c := New(time.Second, WithToken("tok"))
	raw, err := c.Fetch(context.Background(), srv.URL, map[string]any{"pi": 1, "ps": 2})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotQuery.Get("pi") != "1" || gotQuery.Get("ps") != "2" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	res := grid.Extract(raw, grid.NewResponseShape(grid.ResRename{Total: "data.count", List: "data.items"}))
	if res.Total != 3 || len(res.Rows) != 2 {
		t.Errorf("Extract() = %+v", res)
	}
}

func TestClient_FetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			w.Write([]byte("not json"))
		}
	}))
	defer srv.Close()

	c := New(time.Second)
	ctx := context.Background()

	_, err := c.Fetch(ctx, srv.URL+"/fail", nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Errorf("Fetch(/fail) error = %v, want StatusError 502", err)
	}

	if _, err := c.Fetch(ctx, srv.URL+"/garbage", nil); err == nil {
		t.Error("Fetch(/garbage) error = nil, want decode error")
	}

	if _, err := c.Fetch(ctx, "://bad", nil); err == nil {
		t.Error("Fetch(bad url) error = nil")
	}
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// one request per minute: the second call cannot get a token before
	// its context expires
	c := New(time.Second, WithRateLimit(1.0/60, 1))
	if _, err := c.Fetch(context.Background(), srv.URL, nil); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Fetch(ctx, srv.URL, nil); err == nil {
		t.Error("second Fetch() error = nil, want rate limit error")
	}
}

// Remote tables work end to end over the HTTP client.
func TestClient_AsTableFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pi") == "2" {
			w.Write([]byte(`{"total":3,"list":[{"id":3}]}`))
			return
		}
		w.Write([]byte(`{"total":3,"list":[{"id":1},{"id":2}]}`))
	}))
	defer srv.Close()

	tbl, err := grid.New(grid.Remote(srv.URL), grid.Options{PS: 2}, grid.WithFetcher(New(time.Second)))
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Load(context.Background(), 2, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	v := tbl.View()
	if v.PI != 2 || v.Total != 3 || len(v.Rows) != 1 || v.Rows[0].Record["id"] != 3.0 {
		t.Errorf("view = %+v", v)
	}
}
