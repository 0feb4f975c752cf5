package markdown

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestHTML_Empty(t *testing.T) {
	md := New("")
	require.Equal(t, "", string(md.HTML()))
	require.Equal(t, "", md.Excerpt(10))
}

func TestHTML_Sanitizes(t *testing.T) {
	md := New("# 환영합니다\n\nhello <script>alert(1)</script> **world**")

	html := string(md.HTML())
	require.NotContains(t, strings.ToLower(html), "<script")
	require.Contains(t, html, "<strong>world</strong>")
	require.Contains(t, html, "환영합니다")

	// cached
	require.Equal(t, html, string(md.HTML()))
}

func TestHTML_LinksOpenSafely(t *testing.T) {
	md := New("[map](https://example.com/map)")
	html := string(md.HTML())
	require.Contains(t, html, `href="https://example.com/map"`)
	require.Contains(t, html, "nofollow")
}

func TestExcerpt(t *testing.T) {
	md := New("주일 **예배** 안내\n\n오전 11시")
	require.Equal(t, "주일 예배 안내 오전 11시", md.Excerpt(0))
	require.Equal(t, "주일 예배…", md.Excerpt(5))
}

func TestScanResetsCache(t *testing.T) {
	md := New("first")
	require.Contains(t, string(md.HTML()), "first")

	require.NoError(t, md.Scan("second"))
	require.Contains(t, string(md.HTML()), "second")

	require.NoError(t, md.Scan([]byte("third")))
	require.Equal(t, "third", md.Source)

	require.NoError(t, md.Scan(nil))
	require.Equal(t, "", md.Source)

	require.Error(t, md.Scan(123))
}

func TestScanTextAndTextValue(t *testing.T) {
	var md Markdown
	require.NoError(t, md.ScanText(pgtype.Text{Valid: false}))
	require.Equal(t, "", md.Source)

	require.NoError(t, md.ScanText(pgtype.Text{String: "ghi", Valid: true}))
	require.Equal(t, "ghi", md.Source)

	tv, err := (Markdown{Source: "jkl"}).TextValue()
	require.NoError(t, err)
	require.True(t, tv.Valid)
	require.Equal(t, "jkl", tv.String)
}

func TestJSON(t *testing.T) {
	var md Markdown
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &md))
	require.Equal(t, "hello", md.Source)

	b, err := json.Marshal(md)
	require.NoError(t, err)
	require.JSONEq(t, `"hello"`, string(b))
}
