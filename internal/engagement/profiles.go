package engagement

// Platform identifiers accepted across the application.
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
	PlatformThreads   = "threads"
	PlatformPinterest = "pinterest"
	PlatformYouTube   = "youtube"
)

// LengthBand is an inclusive range of caption lengths (in code points).
type LengthBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Profile holds per-platform content norms used by the scorer and the
// scheduling best-time suggestions.
type Profile struct {
	OptimalLength LengthBand
	BestTimes     []string // "HH:MM" local wall-clock defaults
}

// genericLengthBand is the fallback band when no platform is selected.
var genericLengthBand = LengthBand{Min: 80, Max: 150}

// profiles is the compiled-in platform profile table. Loaded once, never
// user-editable.
var profiles = map[string]Profile{
	PlatformInstagram: {
		OptimalLength: LengthBand{Min: 80, Max: 150},
		BestTimes:     []string{"11:00", "14:00", "19:00"},
	},
	PlatformFacebook: {
		OptimalLength: LengthBand{Min: 40, Max: 80},
		BestTimes:     []string{"09:00", "13:00", "16:00"},
	},
	PlatformTwitter: {
		OptimalLength: LengthBand{Min: 70, Max: 100},
		BestTimes:     []string{"08:00", "12:00", "17:00"},
	},
	PlatformLinkedIn: {
		OptimalLength: LengthBand{Min: 150, Max: 300},
		BestTimes:     []string{"08:00", "10:00", "12:00"},
	},
	PlatformTikTok: {
		OptimalLength: LengthBand{Min: 100, Max: 150},
		BestTimes:     []string{"12:00", "19:00", "21:00"},
	},
	PlatformThreads: {
		OptimalLength: LengthBand{Min: 80, Max: 150},
		BestTimes:     []string{"10:00", "13:00", "20:00"},
	},
	PlatformPinterest: {
		OptimalLength: LengthBand{Min: 100, Max: 200},
		BestTimes:     []string{"14:00", "20:00", "21:00"},
	},
	PlatformYouTube: {
		OptimalLength: LengthBand{Min: 100, Max: 150},
		BestTimes:     []string{"15:00", "17:00", "20:00"},
	},
}

// LookupProfile returns the profile for a platform id.
func LookupProfile(platform string) (Profile, bool) {
	p, ok := profiles[platform]
	return p, ok
}

// KnownPlatform reports whether the platform id is in the profile table.
func KnownPlatform(platform string) bool {
	_, ok := profiles[platform]
	return ok
}

// Platforms returns all platform ids in the profile table.
func Platforms() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	return ids
}

// BestTimes returns the default posting times for a platform, or nil for
// unknown platforms.
func BestTimes(platform string) []string {
	p, ok := profiles[platform]
	if !ok {
		return nil
	}
	out := make([]string, len(p.BestTimes))
	copy(out, p.BestTimes)
	return out
}
