package feed

// Field names a record attribute that can carry a fallback value.
type Field string

const (
	FieldTitle           Field = "Title"
	FieldPublicationDate Field = "Publication Date"
	FieldSource          Field = "Source"
	FieldNewsURL         Field = "URL"
	FieldSummary         Field = "Summary"
	FieldAuthor          Field = "Author"
	FieldCategory        Field = "Category"
	FieldGUID            Field = "GUID"
	FieldImageURL        Field = "Image URL"
	FieldLanguage        Field = "Language"
)

// SentinelFor returns the "not found" placeholder used by the file output.
func SentinelFor(field Field) string {
	return string(field) + " Not Found"
}

// FieldPolicy decides what a blank field becomes in an assembled record.
type FieldPolicy interface {
	Fill(field Field, value string) string
}

// SentinelPolicy replaces blank values with "<Field> Not Found".
type SentinelPolicy struct{}

func (SentinelPolicy) Fill(field Field, value string) string {
	if value == "" {
		return SentinelFor(field)
	}
	return value
}

// AbsentPolicy leaves blank values blank; stores write them as NULL.
type AbsentPolicy struct{}

func (AbsentPolicy) Fill(_ Field, value string) string {
	return value
}
