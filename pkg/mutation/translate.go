package mutation

// Translator maps known backend messages to the text shown next to a field.
// Unknown messages pass through unchanged.
type Translator map[string]string

func (t Translator) Translate(msg string) string {
	if out, ok := t[msg]; ok {
		return out
	}
	return msg
}

var DefaultTranslator = Translator{
	"The email has already been taken.":          "A patient with this email already exists.",
	"The identification has already been taken.": "A patient with this identification already exists.",
	"The name has already been taken.":           "This name is already in use.",
	"The rejection_reason field is required.":    "Please explain why the request is rejected.",
	"The selected brand_id is invalid.":          "Choose an existing brand.",
	"The selected category_id is invalid.":       "Choose an existing category.",
	"The selected supplier_id is invalid.":       "Choose an existing supplier.",
}
