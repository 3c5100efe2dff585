package models

// PostCategory is assigned by the Judge.
type PostCategory string

const (
	CategoryTechnical  PostCategory = "Technical"
	CategoryCareer     PostCategory = "Career"
	CategoryNetworking PostCategory = "Networking"
	CategoryOpinion    PostCategory = "Opinion"
	CategoryOther      PostCategory = "Other"
)

// JudgeVerdict is the semantic filter's output for one candidate.
type JudgeVerdict struct {
	ShouldEngage bool         `json:"should_engage"`
	Category     PostCategory `json:"category"`
	Language     string       `json:"language"` // ISO code: "en", "pt-br", ...
	Reasoning    string       `json:"reasoning"`
}

// GhostwriterOutput is the raw generation result before the decision
// pipeline applies its confidence and emptiness guards.
type GhostwriterOutput struct {
	CommentText     string `json:"comment_text"`
	ConfidenceScore int    `json:"confidence_score"` // 0-100
	Reasoning       string `json:"reasoning"`
}

// ActionDecision is the pipeline's final answer for one candidate.
type ActionDecision struct {
	ShouldAct       bool     `json:"should_act"`
	ActionType      string   `json:"action_type"` // comment, like, share
	Content         string   `json:"content,omitempty"`
	ConfidenceScore int      `json:"confidence_score"`
	Reasoning       string   `json:"reasoning,omitempty"`
	Platform        Platform `json:"platform,omitempty"`
}

type TechnicalLevel string

const (
	LevelBeginner     TechnicalLevel = "Beginner"
	LevelIntermediate TechnicalLevel = "Intermediate"
	LevelExpert       TechnicalLevel = "Expert"
	LevelNonTechnical TechnicalLevel = "Non-Technical"
)

// ProfileDossier is the analyst's read on a post author, used to tune the
// ghostwriter's register.
type ProfileDossier struct {
	Summary               string         `json:"summary"`
	TechnicalLevel        TechnicalLevel `json:"technical_level"`
	JobTitle              string         `json:"job_title"`
	IsHypeSeller          bool           `json:"is_hype_seller"`
	TonePreference        string         `json:"tone_preference"`
	Interests             []string       `json:"interests"`
	InteractionGuidelines string         `json:"interaction_guidelines"`
}

// EngagementContext carries everything the Ghostwriter needs: post data,
// judge output, engagement signals, dossier and comment blocks.
type EngagementContext struct {
	PostID         string   `json:"post_id"`
	Platform       Platform `json:"platform"`
	AuthorUsername string   `json:"author_username"`
	Content        string   `json:"content"`
	MediaType      string   `json:"media_type"`
	MediaURLs      []string `json:"media_urls,omitempty"`

	Category string `json:"category"`
	Language string `json:"language"`

	EngagementSignal string `json:"engagement_signal"` // Low, Medium, High
	Strategy         string `json:"strategy"`
	ReplyCount       int    `json:"reply_count"`
	LikeCount        int    `json:"like_count"`

	DossierBlock   string `json:"dossier_block,omitempty"`
	CommentsBlock  string `json:"comments_block,omitempty"`
	PastTakesBlock string `json:"past_takes_block,omitempty"`

	CharLimit  string `json:"char_limit"`
	StyleGuide string `json:"style_guide"`
}
