package merriamwebster

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	audioBaseURL  = "https://media.merriam-webster.com/audio/prons"
	audioLanguage = "en"
	audioCountry  = "us"
	audioFormat   = "wav"
)

// AudioURL returns playback URL of the pronunciation audio.
// Returns false when pronunciation has no audio.
func AudioURL(p Pronunciation) (string, bool) {
	if p.Sound == nil || p.Sound.Audio == "" {
		return "", false
	}
	audio := p.Sound.Audio
	return fmt.Sprintf(
		"%s/%s/%s/%s/%s/%s.%s",
		audioBaseURL, audioLanguage, audioCountry, audioFormat, AudioSubdirectory(audio), audio, audioFormat,
	), true
}

// AudioSubdirectory returns directory of the audio file on the media server
func AudioSubdirectory(audio string) string {
	switch {
	case strings.HasPrefix(audio, "bix"):
		return "bix"
	case strings.HasPrefix(audio, "gg"):
		return "gg"
	}
	first, _ := utf8.DecodeRuneInString(audio)
	if unicode.IsDigit(first) || unicode.IsPunct(first) {
		return "number"
	}
	return strings.ToLower(string(first))
}
