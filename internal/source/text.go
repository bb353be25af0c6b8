package source

import "encoding/json"

// Language codes used by the vendor export.
const (
	LangFrench  = "fr_FR"
	LangEnglish = "en_GB"
	LangSpanish = "es_ES"
)

// Translation is a single {lang, text} pair of a localized bag.
type Translation struct {
	Lang Scalar `json:"lang"`
	Text Scalar `json:"text"`
}

// Text is a localized text bag. Data is nil when the bag had no data field.
type Text struct {
	Data List[Translation] `json:"data"`
}

// UnmarshalJSON decodes the bag, treating non-object values as an empty bag.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	if !isObject(data) {
		return nil
	}
	type plain Text
	return json.Unmarshal(data, (*plain)(t))
}

// Lang returns the text of the first translation for lang, or "" when the
// bag is nil, has no data, or has no entry for lang.
func (t *Text) Lang(lang string) string {
	if t == nil {
		return ""
	}
	for _, tr := range t.Data {
		if tr.Lang.String() == lang {
			return tr.Text.String()
		}
	}
	return ""
}
