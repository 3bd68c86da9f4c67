package domain

import "time"

type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "Chờ xử lý"
	DocumentInProgress DocumentStatus = "Đang xử lý"
	DocumentCompleted  DocumentStatus = "Đã duyệt/Ký"
	DocumentOverdue    DocumentStatus = "Quá hạn"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentInProgress, DocumentCompleted, DocumentOverdue:
		return true
	}
	return false
}

// Document is an incoming paper awaiting the leader's review or signature.
type Document struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`      // reference number, e.g. 123/BC-UBND
	Title         string         `json:"title"`     // abstract
	Submitter     string         `json:"submitter"` // submitting unit
	Deadline      time.Time      `json:"deadline"`
	Status        DocumentStatus `json:"status"`
	Priority      Priority       `json:"priority"`
	AttachmentURL string         `json:"attachmentUrl,omitempty"`
}

// IsPending is true until the document is signed off.
func (d *Document) IsPending() bool {
	return d.Status != DocumentCompleted
}
