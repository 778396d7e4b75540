// Package engagement scores a draft post for engagement potential and
// explains the result. The engine is pure: the same text, media, and
// platform selection always produce the same score, and no call mutates
// shared state. Scoring bands are part of the user-visible contract and
// must not be "improved" without a product decision — in particular the
// hashtag bands overlap and are checked in a fixed order.
package engagement

// Category maxima. The eight maxima sum to exactly 100, so the final clamp
// is a safety net rather than an expected path.
const (
	MaxLengthScore    = 18
	MaxHashtagScore   = 12
	MaxMediaScore     = 20
	MaxEmojiScore     = 8
	MaxHookScore      = 15
	MaxFirstLineScore = 12
	MaxPlatformScore  = 10
	MaxURLScore       = 5
)

// Category names as surfaced in suggestions and API responses.
const (
	CategoryLength    = "Length"
	CategoryHashtags  = "Hashtags"
	CategoryMedia     = "Media"
	CategoryEmoji     = "Emoji"
	CategoryHooks     = "Hooks"
	CategoryFirstLine = "First Line"
	CategoryPlatforms = "Platforms"
	CategoryURL       = "URL"
)

// LengthScore is the length category with its diagnostics.
type LengthScore struct {
	Score int        `json:"score"`
	Max   int        `json:"max"`
	Chars int        `json:"chars"`
	Band  LengthBand `json:"band"` // averaged target band used for scoring
}

// HashtagScore is the hashtag category.
type HashtagScore struct {
	Score int `json:"score"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// MediaScore is the media category.
type MediaScore struct {
	Score    int  `json:"score"`
	Max      int  `json:"max"`
	Count    int  `json:"count"`
	HasVideo bool `json:"has_video"`
}

// EmojiScore is the emoji category.
type EmojiScore struct {
	Score int `json:"score"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// HookScore is the hooks category with the individual signals.
type HookScore struct {
	Score   int         `json:"score"`
	Max     int         `json:"max"`
	Signals HookSignals `json:"signals"`
}

// FirstLineScore is the first-line category.
type FirstLineScore struct {
	Score   int              `json:"score"`
	Max     int              `json:"max"`
	Signals FirstLineSignals `json:"signals"`
}

// PlatformScore is the platform-count category.
type PlatformScore struct {
	Score int `json:"score"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// URLScore is the URL category.
type URLScore struct {
	Score   int  `json:"score"`
	Max     int  `json:"max"`
	Present bool `json:"present"`
}

// Breakdown is the per-category explanation of a score. A fresh Breakdown
// is produced on every call and never mutated afterwards.
type Breakdown struct {
	Length    LengthScore    `json:"length"`
	Hashtags  HashtagScore   `json:"hashtags"`
	Media     MediaScore     `json:"media"`
	Emoji     EmojiScore     `json:"emoji"`
	Hooks     HookScore      `json:"hooks"`
	FirstLine FirstLineScore `json:"first_line"`
	Platforms PlatformScore  `json:"platforms"`
	URL       URLScore       `json:"url"`
}

// Total sums the eight category scores without clamping.
func (b Breakdown) Total() int {
	return b.Length.Score + b.Hashtags.Score + b.Media.Score + b.Emoji.Score +
		b.Hooks.Score + b.FirstLine.Score + b.Platforms.Score + b.URL.Score
}

// Result pairs the clamped 0-100 score with its breakdown.
type Result struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Score runs the full pipeline: extraction, the eight sub-scorers, and
// aggregation. It is total — empty text, nil media, and nil platforms all
// yield a well-formed zero-signal result.
func Score(text string, media []MediaItem, platforms []string) Result {
	breakdown := Breakdown{
		Length:    scoreLength(TextLength(text), platforms),
		Hashtags:  scoreHashtags(HashtagCount(text), platforms),
		Media:     scoreMedia(ExtractMediaSignal(media)),
		Emoji:     scoreEmoji(EmojiCount(text)),
		Hooks:     scoreHooks(ExtractHookSignals(text)),
		FirstLine: scoreFirstLine(ExtractFirstLineSignals(text)),
		Platforms: scorePlatforms(len(platforms)),
		URL:       scoreURL(HasURL(text)),
	}

	return Result{
		Score:     clamp(breakdown.Total(), 0, 100),
		Breakdown: breakdown,
	}
}

// averagedBand computes the arithmetic mean of the selected platforms'
// optimal bands. Unknown platform ids fall back to the generic band so the
// scorer stays total.
func averagedBand(platforms []string) LengthBand {
	if len(platforms) == 0 {
		return genericLengthBand
	}

	sumMin, sumMax := 0, 0
	for _, id := range platforms {
		band := genericLengthBand
		if p, ok := profiles[id]; ok {
			band = p.OptimalLength
		}
		sumMin += band.Min
		sumMax += band.Max
	}

	return LengthBand{
		Min: sumMin / len(platforms),
		Max: sumMax / len(platforms),
	}
}

func scoreLength(chars int, platforms []string) LengthScore {
	band := averagedBand(platforms)
	s := LengthScore{Max: MaxLengthScore, Chars: chars, Band: band}

	if len(platforms) == 0 {
		switch {
		case chars >= band.Min && chars <= band.Max:
			s.Score = 18
		case chars > 0:
			s.Score = 8
		}
		return s
	}

	// Band edges are inclusive: a length exactly at band.Min scores the
	// higher band.
	fChars := float64(chars)
	switch {
	case chars >= band.Min && chars <= band.Max:
		s.Score = 18
	case fChars >= 0.7*float64(band.Min) && fChars <= 1.3*float64(band.Max):
		s.Score = 12
	case chars > 0:
		s.Score = 6
	}
	return s
}

// scoreHashtags checks bands in a fixed order; first match wins. The
// instagram band (5-10) overlaps the general bands, so a count of 6 scores
// differently with and without instagram selected. That order dependence is
// deliberate behavior to preserve.
func scoreHashtags(count int, platforms []string) HashtagScore {
	s := HashtagScore{Max: MaxHashtagScore, Count: count}

	instagram := false
	for _, id := range platforms {
		if id == PlatformInstagram {
			instagram = true
			break
		}
	}

	switch {
	case instagram && count >= 5 && count <= 10:
		s.Score = 12
	case count >= 2 && count <= 5:
		s.Score = 10
	case count >= 1 && count <= 8:
		s.Score = 6
	case count > 10:
		s.Score = 3
	}
	return s
}

func scoreMedia(sig MediaSignal) MediaScore {
	s := MediaScore{Max: MaxMediaScore, Count: sig.Count, HasVideo: sig.HasVideo}
	switch {
	case sig.Count == 0:
	case sig.HasVideo:
		s.Score = 20
	default:
		s.Score = 18
	}
	return s
}

func scoreEmoji(count int) EmojiScore {
	s := EmojiScore{Max: MaxEmojiScore, Count: count}
	switch {
	case count >= 1 && count <= 3:
		s.Score = 8
	case count >= 4 && count <= 6:
		s.Score = 5
	case count > 6:
		s.Score = 2
	}
	return s
}

func scoreHooks(sig HookSignals) HookScore {
	s := HookScore{Max: MaxHookScore, Signals: sig}
	if sig.HasQuestion {
		s.Score += 5
	}
	if sig.HasCTA {
		s.Score += 5
	}
	if sig.HasUrgency {
		s.Score += 3
	}
	if sig.HasListFormat {
		s.Score += 2
	}
	if s.Score > MaxHookScore {
		s.Score = MaxHookScore
	}
	return s
}

func scoreFirstLine(sig FirstLineSignals) FirstLineScore {
	s := FirstLineScore{Max: MaxFirstLineScore, Signals: sig}
	if sig.Length >= 20 {
		s.Score += 3
	}
	if sig.HasEmojiOpener {
		s.Score += 2
	}
	if sig.HasPunctuation {
		s.Score += 3
	}
	if sig.HasPowerWords {
		s.Score += 4
	}
	if s.Score > MaxFirstLineScore {
		s.Score = MaxFirstLineScore
	}
	return s
}

func scorePlatforms(count int) PlatformScore {
	s := PlatformScore{Max: MaxPlatformScore, Count: count}
	switch {
	case count == 0:
	case count == 1:
		s.Score = 7
	case count <= 4:
		s.Score = 10
	default:
		s.Score = 5
	}
	return s
}

func scoreURL(present bool) URLScore {
	s := URLScore{Max: MaxURLScore, Present: present}
	if present {
		s.Score = 5
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
