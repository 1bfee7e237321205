package models

import (
	"encoding/json"
	"time"
)

// remarksKey is reserved inside a vote record's wire form; it can never
// collide with an approver ID because approver IDs are UUIDs.
const remarksKey = "remarks"

// VoteRecord is the per-applicant vote ledger cell: one boolean vote per
// approver plus an optional remark per approver.
type VoteRecord struct {
	Votes   map[string]bool
	Remarks map[string]string
}

// NewVoteRecord returns an empty, usable record.
func NewVoteRecord() *VoteRecord {
	return &VoteRecord{
		Votes:   make(map[string]bool),
		Remarks: make(map[string]string),
	}
}

// ApprovedCount returns the number of true votes.
func (r *VoteRecord) ApprovedCount() int {
	n := 0
	for _, v := range r.Votes {
		if v {
			n++
		}
	}
	return n
}

// HasVoted reports whether the approver has cast a vote in this record.
func (r *VoteRecord) HasVoted(approverID string) bool {
	_, ok := r.Votes[approverID]
	return ok
}

// MarshalJSON writes the persisted wire shape: approver-id -> bool keys
// plus one reserved "remarks" sub-object.
func (r *VoteRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Votes)+1)
	for id, v := range r.Votes {
		out[id] = v
	}
	if len(r.Remarks) > 0 {
		out[remarksKey] = r.Remarks
	}
	return json.Marshal(out)
}

// UnmarshalJSON folds the wire shape back into typed vote and remark maps.
func (r *VoteRecord) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Votes = make(map[string]bool, len(raw))
	r.Remarks = make(map[string]string)
	for key, val := range raw {
		if key == remarksKey {
			if err := json.Unmarshal(val, &r.Remarks); err != nil {
				return err
			}
			continue
		}
		var vote bool
		if err := json.Unmarshal(val, &vote); err != nil {
			return err
		}
		r.Votes[key] = vote
	}
	return nil
}

// VoteLedger maps applicant ID to that applicant's open vote record.
// Entries exist only while a decision is open; the engine clears the
// applicant's entry when the decision finalizes.
type VoteLedger map[string]*VoteRecord

// Record returns the applicant's record, creating an empty one if absent.
func (l VoteLedger) Record(applicantID string) *VoteRecord {
	rec, ok := l[applicantID]
	if !ok {
		rec = NewVoteRecord()
		l[applicantID] = rec
	}
	return rec
}

// ConfigSetting holds the approval settings for one workflow type:
// the approver set, the percentage threshold, the hierarchy switch and
// the running vote ledger. The workflow engine is the only legitimate
// mutator of Value.
type ConfigSetting struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title           *string    `json:"title,omitempty"`
	Type            string     `json:"type" gorm:"uniqueIndex;not null" validate:"required"`
	ApprovalPercent float64    `json:"approval_prsnt" gorm:"not null;type:numeric(10,2)"`
	Hierarchy       bool       `json:"heirarchy" gorm:"default:false"`
	Value           VoteLedger `json:"value" gorm:"type:jsonb"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Approvers []*User `json:"approvers,omitempty" gorm:"many2many:config_approvers;"`
}

// ApproverIDs returns the configured approver set as a slice of IDs.
func (c *ConfigSetting) ApproverIDs() []string {
	ids := make([]string, len(c.Approvers))
	for i, u := range c.Approvers {
		ids[i] = u.ID
	}
	return ids
}

// IsApprover reports whether the user belongs to the configured approver set.
func (c *ConfigSetting) IsApprover(userID string) bool {
	for _, u := range c.Approvers {
		if u.ID == userID {
			return true
		}
	}
	return false
}
