package engagement

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MediaItem is the minimal media shape the scorer cares about. Content is
// irrelevant; only type and order matter.
type MediaItem struct {
	Type string `json:"type"` // "image" or "video"
}

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Fixed pattern lists. These are part of the user-visible scoring contract,
// so changes here change scores.
var (
	hashtagRe = regexp.MustCompile(`#\w+`)
	urlRe     = regexp.MustCompile(`https?://\S+`)

	ctaRe = regexp.MustCompile(`(?i)\b(click|tap|visit|shop|buy|order|sign up|register|subscribe|follow|share|comment|save|download|learn more|check out|swipe up|link in bio|dm|join|grab)\b`)

	urgencyRe = regexp.MustCompile(`(?i)\b(now|today|tonight|hurry|limited|last chance|ends|expires|final|deadline|don't miss|while supplies last|only)\b`)

	listFormatRe = regexp.MustCompile(`(?i)\b\d+\s+(tips|ways|reasons|steps|things|ideas|hacks|secrets|mistakes|lessons|rules)\b`)

	powerWordRe = regexp.MustCompile(`(?i)\b(how|why|secret|stop|start|never|new|free|proven|ultimate|warning|finally|imagine)\b`)
)

// emojiRanges are the Unicode blocks counted as emoji: emoticons, misc
// symbols and pictographs, transport, regional indicators (flags), misc
// symbols, dingbats.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E6, 0x1F1FF},
	{0x2600, 0x26FF},
	{0x2700, 0x27BF},
}

// HookSignals are the four independent engagement-hook tests.
type HookSignals struct {
	HasQuestion   bool `json:"has_question"`
	HasCTA        bool `json:"has_cta"`
	HasUrgency    bool `json:"has_urgency"`
	HasListFormat bool `json:"has_list_format"`
}

// FirstLineSignals describe the opening line of the caption.
type FirstLineSignals struct {
	Length         int  `json:"length"`
	HasEmojiOpener bool `json:"has_emoji_opener"`
	HasPunctuation bool `json:"has_punctuation"`
	HasPowerWords  bool `json:"has_power_words"`
}

// MediaSignal summarizes attached media.
type MediaSignal struct {
	Count    int  `json:"count"`
	HasVideo bool `json:"has_video"`
}

// TextLength counts code points, not bytes.
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// HashtagCount counts word-character hashtags. Punctuation-only tags do not
// count.
func HashtagCount(text string) int {
	return len(hashtagRe.FindAllString(text, -1))
}

// EmojiCount counts runes falling in the defined emoji ranges. Operating on
// runes keeps surrogate pairs intact.
func EmojiCount(text string) int {
	count := 0
	for _, r := range text {
		if isEmoji(r) {
			count++
		}
	}
	return count
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// ExtractHookSignals runs the four hook tests against the full text.
func ExtractHookSignals(text string) HookSignals {
	return HookSignals{
		HasQuestion:   strings.Contains(text, "?"),
		HasCTA:        ctaRe.MatchString(text),
		HasUrgency:    urgencyRe.MatchString(text),
		HasListFormat: listFormatRe.MatchString(text),
	}
}

// firstLine returns the text up to the first newline, or the first 60 runes
// when there is no newline.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60])
	}
	return text
}

// ExtractFirstLineSignals inspects the opening line of the caption.
func ExtractFirstLineSignals(text string) FirstLineSignals {
	line := firstLine(text)
	trimmed := strings.TrimSpace(line)

	sig := FirstLineSignals{
		Length:        utf8.RuneCountInString(line),
		HasPowerWords: powerWordRe.MatchString(line),
	}

	if trimmed != "" {
		first, _ := utf8.DecodeRuneInString(trimmed)
		sig.HasEmojiOpener = isEmoji(first)
		sig.HasPunctuation = strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "!")
	}

	return sig
}

// ExtractMediaSignal summarizes the attached media items.
func ExtractMediaSignal(items []MediaItem) MediaSignal {
	sig := MediaSignal{Count: len(items)}
	for _, item := range items {
		if item.Type == MediaTypeVideo {
			sig.HasVideo = true
			break
		}
	}
	return sig
}

// HasURL reports whether the text contains an http(s) link.
func HasURL(text string) bool {
	return urlRe.MatchString(text)
}
