// Package classify maps raw document text onto the fixed reimbursement
// paperwork taxonomy. Classification is rule based and deterministic: rules
// are evaluated in declaration order and the first satisfied rule wins.
// Unrecognizable text classifies as TypeOther with confidence 0; this package
// never returns an error.
package classify

import "strings"

// DocumentType is the paperwork taxonomy for device-reimbursement documents.
type DocumentType string

const (
	TypeDeviceReport     DocumentType = "device_report"
	TypePrescription     DocumentType = "prescription"
	TypeApprovalDocument DocumentType = "approval_document"
	TypeInvoice          DocumentType = "invoice"
	TypeEReceipt         DocumentType = "e_receipt"
	TypeOther            DocumentType = "other"
)

// Classification is the result of classifying a document's raw text.
type Classification struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"`
}

type rule struct {
	docType  DocumentType
	keywords []string
}

// Rules are ordered by precedence; the order is part of the contract and must
// not be rearranged without revisiting every caller that depends on the
// tie-break. More specific document kinds come before generic billing ones.
var rules = []rule{
	{TypeDeviceReport, []string{"cihaz raporu", "device report", "sağlık kurulu raporu", "uyku apne", "cpap", "bipap", "işitme cihazı"}},
	{TypePrescription, []string{"reçete", "recete", "prescription", "ilaç", "doz"}},
	{TypeApprovalDocument, []string{"onay belgesi", "taahhütname", "approval", "provizyon", "sgk onay"}},
	{TypeInvoice, []string{"fatura", "invoice", "kdv", "tutar"}},
	{TypeEReceipt, []string{"e-makbuz", "makbuz", "e-receipt", "elektronik makbuz"}},
}

// Confidence calibration: one keyword hit is a moderate signal, every
// additional hit strengthens it, capped below certainty.
const (
	baseConfidence    = 0.6
	perKeywordBonus   = 0.1
	confidenceCeiling = 0.95
)

// Classify assigns a document type to raw text. Empty or unmatched text
// yields TypeOther with confidence 0 rather than an error.
func Classify(rawText string) Classification {
	text := strings.ToLower(rawText)

	for _, r := range rules {
		hits := 0
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		confidence := baseConfidence + float64(hits-1)*perKeywordBonus
		if confidence > confidenceCeiling {
			confidence = confidenceCeiling
		}
		return Classification{DocumentType: r.docType, Confidence: confidence}
	}

	return Classification{DocumentType: TypeOther, Confidence: 0}
}
