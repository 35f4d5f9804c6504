package domain

import "time"

// VerificationStatus is the lifecycle state of a verification record.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// VerificationRecord links an emission entry to its integrity fingerprint.
// The transaction hash is derived locally from the data hash and entry
// identity; no external chain is consulted.
type VerificationRecord struct {
	ID      uint           `json:"id" gorm:"primaryKey"`
	EntryID uint           `json:"entry_id" gorm:"index;not null"`
	Entry   *EmissionEntry `json:"entry,omitempty" gorm:"foreignKey:EntryID"`

	DataHash        string `json:"data_hash" gorm:"type:varchar(64);not null"`
	TransactionHash string `json:"transaction_hash" gorm:"type:varchar(64);uniqueIndex;not null"`
	Network         string `json:"network" gorm:"type:varchar(50)"`

	Status    VerificationStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName sets the database table name.
func (VerificationRecord) TableName() string { return "verification_records" }
