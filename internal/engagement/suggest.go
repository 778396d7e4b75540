package engagement

import (
	"fmt"
	"sort"
)

// MaxSuggestions caps the ranked suggestion list.
const MaxSuggestions = 5

// WellOptimizedScore is the policy threshold above which the generator
// returns a single affirmation instead of diminishing-return suggestions.
const WellOptimizedScore = 80

// Suggestion is one actionable improvement, ranked by the points it could
// recover. Derived from a Breakdown on demand, never stored.
type Suggestion struct {
	Icon         string `json:"icon"`
	Text         string `json:"text"`
	ImpactPoints int    `json:"impact_points"`
	Category     string `json:"category"`
}

// Suggest turns a breakdown into a ranked list of improvements, capped at
// MaxSuggestions. A nil breakdown (no prediction run yet) degrades to an
// empty list. When the aggregate score is already at or above
// WellOptimizedScore, a single affirmation is returned instead.
func Suggest(b *Breakdown) []Suggestion {
	if b == nil {
		return []Suggestion{}
	}

	if clamp(b.Total(), 0, 100) >= WellOptimizedScore {
		return []Suggestion{{
			Icon:     "🎯",
			Text:     "Your post is well optimized. Ship it!",
			Category: "Overall",
		}}
	}

	candidates := make([]Suggestion, 0, 12)
	candidates = append(candidates, mediaSuggestions(b.Media)...)
	candidates = append(candidates, lengthSuggestions(b.Length)...)
	candidates = append(candidates, hashtagSuggestions(b.Hashtags)...)
	candidates = append(candidates, emojiSuggestions(b.Emoji)...)
	candidates = append(candidates, hookSuggestions(b.Hooks)...)
	candidates = append(candidates, firstLineSuggestions(b.FirstLine)...)
	candidates = append(candidates, platformSuggestions(b.Platforms)...)
	candidates = append(candidates, urlSuggestions(b.URL)...)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ImpactPoints > candidates[j].ImpactPoints
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates
}

func mediaSuggestions(m MediaScore) []Suggestion {
	switch {
	case m.Count == 0:
		return []Suggestion{{
			Icon:         "📷",
			Text:         "Attach an image or video — posts with media earn far more reach",
			ImpactPoints: MaxMediaScore,
			Category:     CategoryMedia,
		}}
	case !m.HasVideo:
		return []Suggestion{{
			Icon:         "🎬",
			Text:         "Swap in a short video; video consistently outperforms static images",
			ImpactPoints: MaxMediaScore - m.Score,
			Category:     CategoryMedia,
		}}
	}
	return nil
}

func lengthSuggestions(l LengthScore) []Suggestion {
	if l.Score >= MaxLengthScore {
		return nil
	}
	if l.Chars == 0 {
		return []Suggestion{{
			Icon:         "✍️",
			Text:         fmt.Sprintf("Write a caption of %d-%d characters for your selected platforms", l.Band.Min, l.Band.Max),
			ImpactPoints: MaxLengthScore,
			Category:     CategoryLength,
		}}
	}

	verb := "Expand"
	if l.Chars > l.Band.Max {
		verb = "Trim"
	}
	return []Suggestion{{
		Icon:         "✍️",
		Text:         fmt.Sprintf("%s your caption toward %d-%d characters (currently %d)", verb, l.Band.Min, l.Band.Max, l.Chars),
		ImpactPoints: MaxLengthScore - l.Score,
		Category:     CategoryLength,
	}}
}

func hashtagSuggestions(h HashtagScore) []Suggestion {
	switch {
	case h.Count == 0:
		return []Suggestion{{
			Icon:         "#️⃣",
			Text:         "Add 2-5 relevant hashtags so your post surfaces in discovery",
			ImpactPoints: 10,
			Category:     CategoryHashtags,
		}}
	case h.Count == 1:
		return []Suggestion{{
			Icon:         "#️⃣",
			Text:         "Add 1-4 more hashtags to hit the 2-5 sweet spot",
			ImpactPoints: 4,
			Category:     CategoryHashtags,
		}}
	case h.Count > 10:
		return []Suggestion{{
			Icon:         "#️⃣",
			Text:         "Trim to 10 hashtags or fewer; tag walls read as spam",
			ImpactPoints: 7,
			Category:     CategoryHashtags,
		}}
	}
	return nil
}

func emojiSuggestions(e EmojiScore) []Suggestion {
	switch {
	case e.Count == 0:
		return []Suggestion{{
			Icon:         "😊",
			Text:         "Add 1-3 emoji to give the caption some personality",
			ImpactPoints: MaxEmojiScore,
			Category:     CategoryEmoji,
		}}
	case e.Count > 6:
		return []Suggestion{{
			Icon:         "😊",
			Text:         "Cut back to 1-3 emoji; a wall of them buries your message",
			ImpactPoints: MaxEmojiScore - e.Score,
			Category:     CategoryEmoji,
		}}
	case e.Count > 3:
		return []Suggestion{{
			Icon:         "😊",
			Text:         "Trim to 1-3 emoji for the best balance",
			ImpactPoints: MaxEmojiScore - e.Score,
			Category:     CategoryEmoji,
		}}
	}
	return nil
}

// hookSuggestions can emit up to three distinct suggestions, one per
// missing signal.
func hookSuggestions(h HookScore) []Suggestion {
	var out []Suggestion
	if !h.Signals.HasQuestion {
		out = append(out, Suggestion{
			Icon:         "❓",
			Text:         "Ask your audience a question to invite replies",
			ImpactPoints: 5,
			Category:     CategoryHooks,
		})
	}
	if !h.Signals.HasCTA {
		out = append(out, Suggestion{
			Icon:         "📣",
			Text:         "Add a call to action (follow, share, comment, check out...)",
			ImpactPoints: 5,
			Category:     CategoryHooks,
		})
	}
	if !h.Signals.HasUrgency {
		out = append(out, Suggestion{
			Icon:         "⏰",
			Text:         "Add a touch of urgency (today, limited, last chance...)",
			ImpactPoints: 3,
			Category:     CategoryHooks,
		})
	}
	return out
}

func firstLineSuggestions(f FirstLineScore) []Suggestion {
	var out []Suggestion
	if !f.Signals.HasPowerWords {
		out = append(out, Suggestion{
			Icon:         "✨",
			Text:         "Open with a power word (how, why, secret, stop...) to hook scrollers",
			ImpactPoints: 4,
			Category:     CategoryFirstLine,
		})
	}
	if f.Signals.Length < 20 {
		out = append(out, Suggestion{
			Icon:         "✨",
			Text:         "Lead with a longer, scroll-stopping first line (20+ characters)",
			ImpactPoints: 3,
			Category:     CategoryFirstLine,
		})
	}
	return out
}

func platformSuggestions(p PlatformScore) []Suggestion {
	switch {
	case p.Count == 0:
		return []Suggestion{{
			Icon:         "🌐",
			Text:         "Select at least one platform to publish to",
			ImpactPoints: MaxPlatformScore,
			Category:     CategoryPlatforms,
		}}
	case p.Count == 1:
		return []Suggestion{{
			Icon:         "🌐",
			Text:         "Cross-post to 2-4 platforms to multiply your reach",
			ImpactPoints: MaxPlatformScore - p.Score,
			Category:     CategoryPlatforms,
		}}
	case p.Count > 4:
		return []Suggestion{{
			Icon:         "🌐",
			Text:         "Focus on 2-4 platforms and tailor the post per network",
			ImpactPoints: MaxPlatformScore - p.Score,
			Category:     CategoryPlatforms,
		}}
	}
	return nil
}

func urlSuggestions(u URLScore) []Suggestion {
	if u.Present {
		return nil
	}
	return []Suggestion{{
		Icon:         "🔗",
		Text:         "Include a link to drive traffic somewhere useful",
		ImpactPoints: MaxURLScore,
		Category:     CategoryURL,
	}}
}
