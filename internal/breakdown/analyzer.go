package breakdown

import (
	"regexp"
	"strings"
)

// Analysis is the cinematography breakdown of one scene description
type Analysis struct {
	ShotType      []string `json:"shotType"`
	Movement      []string `json:"movement"`
	Mood          []string `json:"mood"`
	Characters    []string `json:"characters"`
	Props         []string `json:"props"`
	Sound         []string `json:"sound"`
	SceneDynamics []string `json:"sceneDynamics"`
	PurposeNotes  []string `json:"purposeNotes"`
	Lighting      []string `json:"lighting"`
}

var namePattern = regexp.MustCompile(`^[A-Z][a-z]+$`)

// sentence-initial words that look like names but aren't
var commonStarters = map[string]struct{}{
	"The": {}, "A": {}, "An": {}, "It": {}, "He": {}, "She": {},
	"They": {}, "We": {}, "In": {}, "On": {}, "At": {}, "Then": {},
	"Suddenly": {},
}

var commonProps = []string{
	"gun", "phone", "knife", "table", "chair", "car", "book",
	"glass", "bottle", "sword", "bag", "computer", "laptop",
}

var commonSounds = []string{
	"crash", "bang", "scream", "whisper", "music", "silence",
	"footsteps", "wind", "rain", "thunder",
}

var commonLighting = []string{
	"dark", "bright", "shadow", "neon", "sunlight", "moonlight",
	"candle", "lamp", "fluorescent", "dim",
}

// AnalyzeScene runs the keyword heuristic over a scene description. It
// is the offline fallback when the LLM is unconfigured or failing, and
// always produces a usable result.
func AnalyzeScene(text string) *Analysis {
	lower := strings.ToLower(text)
	result := &Analysis{}

	// Shot types
	if containsAny(lower, "close up", "close-up", "face") {
		result.ShotType = append(result.ShotType, "Close-Up")
	}
	if containsAny(lower, "wide", "landscape", "room") {
		result.ShotType = append(result.ShotType, "Wide Shot")
	}
	if containsAny(lower, "mid", "waist") {
		result.ShotType = append(result.ShotType, "Mid Shot")
	}
	if len(result.ShotType) == 0 {
		result.ShotType = append(result.ShotType, "Mid Shot")
	}

	// Camera movement
	if strings.Contains(lower, "pan") {
		result.Movement = append(result.Movement, "Pan")
	}
	if strings.Contains(lower, "tilt") {
		result.Movement = append(result.Movement, "Tilt")
	}
	if containsAny(lower, "dolly", "move in", "move out") {
		result.Movement = append(result.Movement, "Dolly")
	}
	if containsAny(lower, "static", "still") {
		result.Movement = append(result.Movement, "Static")
	}
	if containsAny(lower, "handheld", "shaky") {
		result.Movement = append(result.Movement, "Handheld")
	}
	if len(result.Movement) == 0 {
		result.Movement = append(result.Movement, "Static")
	}

	// Mood
	if containsAny(lower, "dark", "night", "shadow") {
		result.Mood = append(result.Mood, "Dark/Noir")
	}
	if containsAny(lower, "bright", "sun", "day") {
		result.Mood = append(result.Mood, "Bright/Happy")
	}
	if containsAny(lower, "tense", "quiet", "nervous") {
		result.Mood = append(result.Mood, "Tense")
	}
	if containsAny(lower, "fast", "run", "chase") {
		result.Mood = append(result.Mood, "Action/Fast")
	}
	if len(result.Mood) == 0 {
		result.Mood = append(result.Mood, "Neutral")
	}

	// Characters: capitalized words minus sentence starters
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		if len(word) <= 2 || !namePattern.MatchString(word) {
			continue
		}
		if _, skip := commonStarters[word]; skip {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		result.Characters = append(result.Characters, word)
	}

	result.Props = matchKeywords(lower, commonProps)
	result.Sound = matchKeywords(lower, commonSounds)
	if len(result.Sound) == 0 {
		result.Sound = append(result.Sound, "Ambient Noise")
	}

	// Scene dynamics inferred from mood and movement
	switch {
	case contains(result.Mood, "Action/Fast") || contains(result.Movement, "Handheld"):
		result.SceneDynamics = append(result.SceneDynamics, "High Energy")
	case contains(result.Mood, "Tense") || contains(result.Mood, "Dark/Noir"):
		result.SceneDynamics = append(result.SceneDynamics, "Suspenseful")
	default:
		result.SceneDynamics = append(result.SceneDynamics, "Balanced")
	}

	result.PurposeNotes = append(result.PurposeNotes, "Establish setting and atmosphere.")
	if len(result.Characters) > 0 {
		result.PurposeNotes = append(result.PurposeNotes, "Introduce characters.")
	}

	result.Lighting = matchKeywords(lower, commonLighting)
	if len(result.Lighting) == 0 {
		result.Lighting = append(result.Lighting, "Natural/Ambient")
	}

	return result
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func matchKeywords(lower string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			out = append(out, strings.ToUpper(k[:1])+k[1:])
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
