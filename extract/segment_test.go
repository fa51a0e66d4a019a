package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperIDs(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		sessionID string
		want      []string
	}{
		{
			name:      "simple",
			text:      "MOFAA1 first paper MOFAA2 second paper",
			sessionID: "MOFAA",
			want:      []string{"MOFAA1", "MOFAA2"},
		},
		{
			name:      "duplicates removed",
			text:      "MOFAA1 ... MOFAA1 cited again ... MOFAA2 ... MOFAA1",
			sessionID: "MOFAA",
			want:      []string{"MOFAA1", "MOFAA2"},
		},
		{
			name:      "numeric sort not lexicographic",
			text:      "TUP10 TUP2 TUP1",
			sessionID: "TUP",
			want:      []string{"TUP1", "TUP2", "TUP10"},
		},
		{
			name:      "other sessions ignored",
			text:      "MOFAA1 abc TUFAA3 def MOFAA3",
			sessionID: "MOFAA",
			want:      []string{"MOFAA1", "MOFAA3"},
		},
		{
			name:      "no papers",
			text:      "nothing to see here",
			sessionID: "MOFAA",
			want:      nil,
		},
		{
			name:      "empty text",
			text:      "",
			sessionID: "MOFAA",
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaperIDs(tt.text, tt.sessionID))
		})
	}
}

func TestPaperIDsIdempotent(t *testing.T) {
	text := "MOFAA3 x MOFAA1 y MOFAA3 z MOFAA10"
	first := PaperIDs(text, "MOFAA")
	second := PaperIDs(text, "MOFAA")
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"MOFAA1", "MOFAA3", "MOFAA10"}, first)
}

func TestPaperIDsStrictlyAscending(t *testing.T) {
	ids := PaperIDs("WETEB12 WETEB3 WETEB3 WETEB1 WETEB12", "WETEB")
	assert.Equal(t, []string{"WETEB1", "WETEB3", "WETEB12"}, ids)
	for i := 1; i < len(ids); i++ {
		assert.NotEqual(t, ids[i-1], ids[i])
	}
}
