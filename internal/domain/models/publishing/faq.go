package publishing

// FAQ is one question/answer pair attached to an article. FAQs are stored
// as an ordered list; list order is display order.
type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
