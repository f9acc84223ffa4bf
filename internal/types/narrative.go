package types

// AnswerSet is the completed discovery questionnaire. All eight fields are
// required and immutable once handed to the generator.
type AnswerSet struct {
	Audience     string `json:"audience"`
	Goal         string `json:"goal"`
	Character    string `json:"character"`
	Stage        string `json:"stage"`
	Struggle     string `json:"struggle"`
	TurningPoint string `json:"turningPoint"`
	Strengths    string `json:"strengths"`
	Outcome      string `json:"outcome"`
}

// Fields returns the answers in questionnaire order.
func (a AnswerSet) Fields() []string {
	return []string{a.Audience, a.Goal, a.Character, a.Stage, a.Struggle, a.TurningPoint, a.Strengths, a.Outcome}
}

// OutputFormat is the target presentation shape for the generated narrative.
type OutputFormat string

const (
	FormatLinkedInAbout OutputFormat = `LinkedIn "About" section`
	FormatPersonalBio   OutputFormat = "Personal website bio"
	FormatPitchDeck     OutputFormat = "Founder story for pitch deck"
	FormatLandingPage   OutputFormat = "Short narrative for landing page"
	FormatMultiVersion  OutputFormat = "Multi-version (short, medium, long)"
)

// OutputFormats lists every valid format.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatLinkedInAbout, FormatPersonalBio, FormatPitchDeck, FormatLandingPage, FormatMultiVersion}
}

func (f OutputFormat) Valid() bool {
	for _, known := range OutputFormats() {
		if f == known {
			return true
		}
	}
	return false
}

// RefinementTone is a tone adjustment applied to a follow-up generation that
// reuses the prior answers and format.
type RefinementTone string

const (
	ToneConfident      RefinementTone = "More confident"
	ToneEmotional      RefinementTone = "More emotional"
	ToneConcise        RefinementTone = "More concise"
	ToneAuthoritative  RefinementTone = "More authoritative"
	ToneConversational RefinementTone = "More conversational"
)

func RefinementTones() []RefinementTone {
	return []RefinementTone{ToneConfident, ToneEmotional, ToneConcise, ToneAuthoritative, ToneConversational}
}

func (t RefinementTone) Valid() bool {
	for _, known := range RefinementTones() {
		if t == known {
			return true
		}
	}
	return false
}

// StoryInsights is the optional strategy bundle returned beside the narrative.
type StoryInsights struct {
	Positioning string   `json:"positioning"`
	Hooks       []string `json:"hooks"`
	Themes      []string `json:"themes"`
	Suggestion  string   `json:"suggestion"`
}

// StoryResult is one generation output. Each result fully supersedes the
// previous one; there is no merging or versioning on the client contract.
type StoryResult struct {
	Content  string         `json:"content"`
	Insights *StoryInsights `json:"insights,omitempty"`
}
