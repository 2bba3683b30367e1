package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/prevengo/internal/pdf"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run(append([]string{"quotepdf"}, args...)))
	return out.String()
}

func TestSampleThenRender(t *testing.T) {
	dir := t.TempDir()
	quotePath := filepath.Join(dir, "sample.json")
	run(t, "sample", "--out", quotePath)

	raw, err := os.ReadFile(quotePath)
	require.NoError(t, err)
	var q pdf.Quote
	require.NoError(t, json.Unmarshal(raw, &q))
	assert.Len(t, q.Items, 3)
	assert.Greater(t, q.Total, q.Subtotal, "sample totals include tax")

	issuerPath := filepath.Join(dir, "issuer.json")
	require.NoError(t, os.WriteFile(issuerPath, []byte(`{"companyName":"ACME Srl","vatNumber":"IT01234567890"}`), 0o644))

	pdfPath := filepath.Join(dir, "out.pdf")
	msg := run(t, "render", "--quote", quotePath, "--issuer", issuerPath, "--out", pdfPath, "--lang", "en")
	assert.True(t, strings.HasPrefix(msg, pdfPath))

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderMissingQuote(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"quotepdf", "render", "--quote", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestFillTotals(t *testing.T) {
	q := pdf.Quote{Items: []pdf.Item{{Quantity: 2, UnitPrice: 50}}}
	fillTotals(&q)
	assert.Equal(t, 100.0, q.Subtotal)
	assert.Equal(t, 22.0, q.Tax)
	assert.Equal(t, 122.0, q.Total)

	given := pdf.Quote{Subtotal: 10, Total: 12, Items: []pdf.Item{{Quantity: 1, UnitPrice: 99}}}
	fillTotals(&given)
	assert.Equal(t, 10.0, given.Subtotal, "supplied totals are kept")
}
