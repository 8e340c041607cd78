package extraction

// DocumentType is the closed set of document categories the classifier
// can assign. Anything outside the set normalizes to TypeUnknown.
type DocumentType string

const (
	TypeInvoice          DocumentType = "INVOICE"
	TypeIDCard           DocumentType = "ID_CARD"
	TypeBankStatement    DocumentType = "BANK_STATEMENT"
	TypePayStub          DocumentType = "PAY_STUB"
	TypeTaxReturn        DocumentType = "TAX_RETURN"
	TypeUtilityBill      DocumentType = "UTILITY_BILL"
	TypeEmploymentLetter DocumentType = "EMPLOYMENT_LETTER"
	TypeUnknown          DocumentType = "UNKNOWN"
)

// DocumentTypes lists every valid type, TypeUnknown included.
var DocumentTypes = []DocumentType{
	TypeInvoice,
	TypeIDCard,
	TypeBankStatement,
	TypePayStub,
	TypeTaxReturn,
	TypeUtilityBill,
	TypeEmploymentLetter,
	TypeUnknown,
}

// IsValid reports whether t is one of the known document types.
func (t DocumentType) IsValid() bool {
	for _, dt := range DocumentTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// Classification is the classifier's verdict on a document.
type Classification struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// Field is one extracted key/value pair. Value is nil when the model
// could not find the field in the text.
type Field struct {
	Key        string  `json:"key"`
	Value      *string `json:"value"`
	Confidence float64 `json:"confidence"`
}
