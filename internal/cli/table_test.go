package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRender(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	tbl := NewTable("RANK", "MODEL", "VALUE")
	tbl.Append("1", "llama-3.1-8b-instant", "9.41")
	tbl.Append("2", "gpt-4o", "0.12")

	var buf bytes.Buffer
	tbl.Render(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "RANK  MODEL                 VALUE", lines[0])
	assert.Equal(t, "1     llama-3.1-8b-instant  9.41", lines[1])
	assert.Equal(t, "2     gpt-4o                0.12", lines[2])
}

func TestHighlightJSON_DisabledIsIdentity(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	in := `{"model_id": "gpt-4o", "rank": 1, "ok": true}`
	assert.Equal(t, in, HighlightJSON(in))
}

func TestHighlightJSON_ColorsTokens(t *testing.T) {
	SetEnabled(true)

	out := HighlightJSON(`{"rank": 1}`)
	assert.Contains(t, out, Blue+`"rank"`+ResetCode+":")
	assert.Contains(t, out, Purple+"1"+ResetCode)
}
