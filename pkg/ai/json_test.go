package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{name: "plain", content: `[{"id":1,"category":"Rent"}]`, want: `[{"id":1,"category":"Rent"}]`, ok: true},
		{name: "fenced", content: "```json\n[{\"id\":1}]\n```", want: `[{"id":1}]`, ok: true},
		{name: "prose around", content: "Sure! Here you go: [{\"id\":2}] Hope that helps.", want: `[{"id":2}]`, ok: true},
		{name: "no array", content: "I cannot help with that.", ok: false},
		{name: "broken", content: "[{\"id\":1,}", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONArray(tt.content)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.JSONEq(t, tt.want, string(got))
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, ok := ExtractJSONObject("Answer follows {\"answer\":\"hi\",\"insights\":[]} end")
	require.True(t, ok)
	require.JSONEq(t, `{"answer":"hi","insights":[]}`, string(got))

	_, ok = ExtractJSONObject("nothing here")
	require.False(t, ok)
}
