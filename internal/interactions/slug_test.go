package interactions_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/valinor-ai/supportdesk/internal/interactions"
)

func TestSlugifyChannelName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accents and punctuation", "Équipe Rouge!", "équipe-rouge"},
		{"decomposed accent", "E\u0301quipe", "équipe"},
		{"only punctuation", "!!!", "canal"},
		{"empty", "", "canal"},
		{"edge separators", "  --Hello__World--  ", "hello-world"},
		{"digits kept", "Team 42", "team-42"},
		{"cyrillic", "Иван Петров", "иван-петров"},
		{"cjk", "日本語 チャンネル", "日本語-チャンネル"},
		{"emoji separators", "ana🔥🔥luz", "ana-luz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interactions.SlugifyChannelName(tt.in))
		})
	}
}

func TestSlugifyChannelName_Truncates(t *testing.T) {
	got := interactions.SlugifyChannelName(strings.Repeat("a", 95))
	assert.Equal(t, strings.Repeat("a", 90), got)

	got = interactions.SlugifyChannelName(strings.Repeat("ñ", 120))
	assert.Equal(t, 90, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestSlugifyChannelName_NoTrailingHyphenAfterCut(t *testing.T) {
	got := interactions.SlugifyChannelName(strings.Repeat("a", 89) + " b")
	assert.Equal(t, strings.Repeat("a", 89), got)
}
