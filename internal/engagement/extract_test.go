package engagement

import "testing"

func TestTextLength_CountsCodePoints(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"héllo", 5},        // é is multi-byte, one code point
		{"😀😀", 2},           // astral-plane emoji are single code points
		{"日本語のキャプション", 10},
	}

	for _, tc := range cases {
		if got := TextLength(tc.text); got != tc.want {
			t.Errorf("TextLength(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestHashtagCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"no tags here", 0},
		{"#go", 1},
		{"#go #golang #backend", 3},
		{"#! #?", 0}, // punctuation-only tags do not count
		{"email#notatag", 1},
		{"#tag1 text #tag2\n#tag3", 3},
	}

	for _, tc := range cases {
		if got := HashtagCount(tc.text); got != tc.want {
			t.Errorf("HashtagCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestEmojiCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"plain text", 0},
		{"hello 😀", 1},
		{"😀🚀☀️", 3}, // face, transport, misc symbol (variation selector not counted)
		{"🇺🇸", 2},   // flags are two regional indicator code points
		{"✂️ cut here", 1},
	}

	for _, tc := range cases {
		if got := EmojiCount(tc.text); got != tc.want {
			t.Errorf("EmojiCount(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestExtractHookSignals(t *testing.T) {
	sig := ExtractHookSignals("What do you think? Click the link NOW for 5 tips")
	if !sig.HasQuestion {
		t.Error("expected HasQuestion")
	}
	if !sig.HasCTA {
		t.Error("expected HasCTA (click)")
	}
	if !sig.HasUrgency {
		t.Error("expected HasUrgency (now, case-insensitive)")
	}
	if !sig.HasListFormat {
		t.Error("expected HasListFormat (5 tips)")
	}

	none := ExtractHookSignals("a plain statement about the weather")
	if none.HasQuestion || none.HasCTA || none.HasUrgency || none.HasListFormat {
		t.Errorf("expected no hook signals, got %+v", none)
	}
}

func TestExtractHookSignals_EmptyText(t *testing.T) {
	sig := ExtractHookSignals("")
	if sig.HasQuestion || sig.HasCTA || sig.HasUrgency || sig.HasListFormat {
		t.Errorf("empty text must yield zero signals, got %+v", sig)
	}
}

func TestExtractFirstLineSignals(t *testing.T) {
	sig := ExtractFirstLineSignals("😀 Why nobody told me this!\nsecond line ignored?")
	if !sig.HasEmojiOpener {
		t.Error("expected emoji opener")
	}
	if !sig.HasPunctuation {
		t.Error("expected trailing punctuation on first line")
	}
	if !sig.HasPowerWords {
		t.Error("expected power word (why)")
	}
	if sig.Length < 20 {
		t.Errorf("expected first-line length >= 20, got %d", sig.Length)
	}
}

func TestExtractFirstLineSignals_NoNewlineTruncatesAt60(t *testing.T) {
	long := make([]rune, 0, 100)
	for i := 0; i < 100; i++ {
		long = append(long, 'a')
	}
	sig := ExtractFirstLineSignals(string(long))
	if sig.Length != 60 {
		t.Errorf("first line without newline should be capped at 60 runes, got %d", sig.Length)
	}
}

func TestExtractFirstLineSignals_Empty(t *testing.T) {
	sig := ExtractFirstLineSignals("")
	if sig.Length != 0 || sig.HasEmojiOpener || sig.HasPunctuation || sig.HasPowerWords {
		t.Errorf("empty text must yield baseline signals, got %+v", sig)
	}
}

func TestExtractMediaSignal(t *testing.T) {
	if sig := ExtractMediaSignal(nil); sig.Count != 0 || sig.HasVideo {
		t.Errorf("nil media should be zero signal, got %+v", sig)
	}

	images := []MediaItem{{Type: MediaTypeImage}, {Type: MediaTypeImage}}
	if sig := ExtractMediaSignal(images); sig.Count != 2 || sig.HasVideo {
		t.Errorf("two images: got %+v", sig)
	}

	mixed := []MediaItem{{Type: MediaTypeImage}, {Type: MediaTypeVideo}}
	if sig := ExtractMediaSignal(mixed); sig.Count != 2 || !sig.HasVideo {
		t.Errorf("image+video: got %+v", sig)
	}
}

func TestHasURL(t *testing.T) {
	if HasURL("no link") {
		t.Error("plain text should not match")
	}
	if !HasURL("see https://example.com/page") {
		t.Error("https link should match")
	}
	if !HasURL("http://example.com") {
		t.Error("http link should match")
	}
	if HasURL("ftp://example.com") {
		t.Error("non-http scheme should not match")
	}
}
