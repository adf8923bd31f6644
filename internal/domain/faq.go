package domain

// FAQEntry is a static question/answer pair used for fast-path replies.
type FAQEntry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}
