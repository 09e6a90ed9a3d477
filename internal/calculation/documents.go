package calculation

import (
	"unicode"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// DocumentationStatus maps each active required document type to whether the
// beneficiary can satisfy it, either with the document itself or, when the
// program allows it, with one of its alternatives. Document types without a
// matching "has" flag are never satisfied.
func DocumentationStatus(program domain.Program, p domain.EligibilityParams) map[string]bool {
	docs := program.ActiveDocuments()
	status := make(map[string]bool, len(docs))
	for _, doc := range docs {
		satisfied := hasDocument(doc.DocumentType, p)
		if !satisfied && doc.AlternativesAllowed {
			for _, alt := range doc.Alternatives {
				if hasDocument(alt.AlternativeType, p) {
					satisfied = true
					break
				}
			}
		}
		status[doc.DocumentType] = satisfied
	}
	return status
}

// hasDocument checks the params flag "has<DocumentType>", e.g. "valid_id"
// checks hasValidID.
func hasDocument(documentType string, p domain.EligibilityParams) bool {
	key := []rune(domain.NormalizeKey(documentType))
	if len(key) == 0 {
		return false
	}
	key[0] = unicode.ToUpper(key[0])

	f, ok := domain.FieldByName("has" + string(key))
	if !ok {
		return false
	}
	v, ok := p.Lookup(f)
	return ok && v == "true"
}
