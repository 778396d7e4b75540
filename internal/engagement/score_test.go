package engagement

import (
	"reflect"
	"strings"
	"testing"
)

// plainText returns an n-rune caption with no hashtags, emoji, hooks,
// power words, or links.
func plainText(n int) string {
	return strings.Repeat("a", n)
}

func TestScore_EmptyEverything(t *testing.T) {
	res := Score("", nil, nil)

	if res.Score != 0 {
		t.Fatalf("empty input: score = %d, want 0", res.Score)
	}

	b := res.Breakdown
	if b.Length.Score != 0 || b.Hashtags.Score != 0 || b.Media.Score != 0 ||
		b.Emoji.Score != 0 || b.Hooks.Score != 0 || b.FirstLine.Score != 0 ||
		b.Platforms.Score != 0 || b.URL.Score != 0 {
		t.Errorf("empty input: expected all-zero breakdown, got %+v", b)
	}
}

func TestScore_InstagramImagePost(t *testing.T) {
	res := Score(plainText(120), []MediaItem{{Type: MediaTypeImage}}, []string{PlatformInstagram})

	if res.Breakdown.Length.Score != 18 {
		t.Errorf("length: got %d, want 18 (120 chars is inside instagram's optimal band)", res.Breakdown.Length.Score)
	}
	if res.Breakdown.Media.Score != 18 {
		t.Errorf("media: got %d, want 18 (image without video)", res.Breakdown.Media.Score)
	}
	if res.Score < 36 {
		t.Errorf("total: got %d, want >= 36", res.Score)
	}
}

func TestScore_InstagramHashtagBand(t *testing.T) {
	text := "#a #b #c #d #e #f"
	res := Score(text, nil, []string{PlatformInstagram})
	if res.Breakdown.Hashtags.Score != 12 {
		t.Errorf("6 hashtags with instagram: got %d, want 12", res.Breakdown.Hashtags.Score)
	}

	// Same count without instagram falls through to the general 1-8 band.
	res = Score(text, nil, []string{PlatformFacebook})
	if res.Breakdown.Hashtags.Score != 6 {
		t.Errorf("6 hashtags without instagram: got %d, want 6", res.Breakdown.Hashtags.Score)
	}
}

func TestScore_VideoQuestionURLMultiPlatform(t *testing.T) {
	text := "Is this the best launch yet? Full story at https://example.com/launch"
	media := []MediaItem{{Type: MediaTypeVideo}}
	platforms := []string{PlatformInstagram, PlatformFacebook, PlatformTwitter}

	res := Score(text, media, platforms)

	if res.Breakdown.Media.Score != 20 {
		t.Errorf("media: got %d, want 20 (video)", res.Breakdown.Media.Score)
	}
	if !res.Breakdown.Hooks.Signals.HasQuestion || res.Breakdown.Hooks.Score < 5 {
		t.Errorf("hooks: question should contribute 5, got %+v", res.Breakdown.Hooks)
	}
	if res.Breakdown.URL.Score != 5 {
		t.Errorf("url: got %d, want 5", res.Breakdown.URL.Score)
	}
	if res.Breakdown.Platforms.Score != 10 {
		t.Errorf("platforms: got %d, want 10 (3 selected)", res.Breakdown.Platforms.Score)
	}
}

func TestScore_TotalAlwaysInRange(t *testing.T) {
	inputs := []struct {
		text      string
		media     []MediaItem
		platforms []string
	}{
		{"", nil, nil},
		{plainText(5000), nil, nil},
		{"#a #b #c #d #e #f #g #h #i #j #k #l", []MediaItem{{Type: MediaTypeVideo}}, []string{PlatformInstagram}},
		{"Why wait? Shop now! 😀😀😀 https://x.co #go", []MediaItem{{Type: MediaTypeImage}, {Type: MediaTypeVideo}}, Platforms()},
		{"\n\n\n", nil, []string{"unknownplatform"}},
	}

	for _, in := range inputs {
		res := Score(in.text, in.media, in.platforms)
		if res.Score < 0 || res.Score > 100 {
			t.Errorf("score out of range for %q: %d", in.text, res.Score)
		}
		if got := clamp(res.Breakdown.Total(), 0, 100); got != res.Score {
			t.Errorf("score != clamp(sum of sub-scores): %d vs %d", res.Score, got)
		}
	}
}

func TestScore_Idempotent(t *testing.T) {
	text := "Why settle? 5 tips to level up 😀 https://example.com #growth #tips"
	media := []MediaItem{{Type: MediaTypeImage}}
	platforms := []string{PlatformInstagram, PlatformLinkedIn}

	first := Score(text, media, platforms)
	second := Score(text, media, platforms)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestScore_HashtagMonotonicityWithoutInstagram(t *testing.T) {
	// Counts 0 through 3 must never decrease the sub-score and must travel
	// the full 0 -> 10 span.
	prev := -1
	for count := 0; count <= 3; count++ {
		tags := make([]string, count)
		for i := range tags {
			tags[i] = "#tag" + string(rune('a'+i))
		}
		res := Score(strings.Join(tags, " "), nil, []string{PlatformFacebook})
		got := res.Breakdown.Hashtags.Score
		if got < prev {
			t.Errorf("hashtag score decreased at count %d: %d -> %d", count, prev, got)
		}
		prev = got
	}
	if prev != 10 {
		t.Errorf("3 hashtags: got %d, want 10", prev)
	}
}

func TestScore_LengthBandEdgesInclusive(t *testing.T) {
	// Instagram's band is 80-150; exactly 80 and exactly 150 land in the
	// top band.
	for _, n := range []int{80, 150} {
		res := Score(plainText(n), nil, []string{PlatformInstagram})
		if res.Breakdown.Length.Score != 18 {
			t.Errorf("%d chars: got %d, want 18 (band edges are inclusive)", n, res.Breakdown.Length.Score)
		}
	}

	// One past the stretch band (1.3 * 150 = 195) drops to the floor score.
	res := Score(plainText(196), nil, []string{PlatformInstagram})
	if res.Breakdown.Length.Score != 6 {
		t.Errorf("196 chars: got %d, want 6", res.Breakdown.Length.Score)
	}
}

func TestScore_LengthFallbackWithoutPlatforms(t *testing.T) {
	res := Score(plainText(100), nil, nil)
	if res.Breakdown.Length.Score != 18 {
		t.Errorf("100 chars, no platforms: got %d, want 18 (generic 80-150 band)", res.Breakdown.Length.Score)
	}

	res = Score(plainText(10), nil, nil)
	if res.Breakdown.Length.Score != 8 {
		t.Errorf("10 chars, no platforms: got %d, want 8", res.Breakdown.Length.Score)
	}
}

func TestScore_LengthBandAveragesAcrossPlatforms(t *testing.T) {
	// facebook (40-80) + linkedin (150-300) average to 95-190.
	res := Score(plainText(100), nil, []string{PlatformFacebook, PlatformLinkedIn})
	band := res.Breakdown.Length.Band
	if band.Min != 95 || band.Max != 190 {
		t.Fatalf("averaged band: got %d-%d, want 95-190", band.Min, band.Max)
	}
	if res.Breakdown.Length.Score != 18 {
		t.Errorf("100 chars in averaged band: got %d, want 18", res.Breakdown.Length.Score)
	}
}

func TestScore_PlatformCountBands(t *testing.T) {
	cases := []struct {
		platforms []string
		want      int
	}{
		{nil, 0},
		{[]string{PlatformInstagram}, 7},
		{[]string{PlatformInstagram, PlatformFacebook}, 10},
		{[]string{PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformThreads}, 10},
		{[]string{PlatformInstagram, PlatformFacebook, PlatformTwitter, PlatformThreads, PlatformTikTok}, 5},
	}

	for _, tc := range cases {
		res := Score("", nil, tc.platforms)
		if got := res.Breakdown.Platforms.Score; got != tc.want {
			t.Errorf("%d platforms: got %d, want %d", len(tc.platforms), got, tc.want)
		}
	}
}

func TestScore_EmojiBands(t *testing.T) {
	cases := []struct {
		emoji string
		want  int
	}{
		{"", 0},
		{"😀", 8},
		{"😀😀😀", 8},
		{"😀😀😀😀", 5},
		{"😀😀😀😀😀😀", 5},
		{"😀😀😀😀😀😀😀", 2},
	}

	for _, tc := range cases {
		res := Score(tc.emoji, nil, nil)
		if got := res.Breakdown.Emoji.Score; got != tc.want {
			t.Errorf("%d emoji: got %d, want %d", EmojiCount(tc.emoji), got, tc.want)
		}
	}
}

func TestScore_MaximaSumToOneHundred(t *testing.T) {
	sum := MaxLengthScore + MaxHashtagScore + MaxMediaScore + MaxEmojiScore +
		MaxHookScore + MaxFirstLineScore + MaxPlatformScore + MaxURLScore
	if sum != 100 {
		t.Errorf("category maxima sum to %d, want 100", sum)
	}
}
