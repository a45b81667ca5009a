package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient is the hospital profile attached to a PATIENT user.
type Patient struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	UHID             string     `gorm:"column:uhid;size:20;uniqueIndex;not null" json:"uhid"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Gender           Gender     `gorm:"size:10" json:"gender,omitempty"`
	BloodGroup       string     `gorm:"size:5" json:"bloodGroup,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact string     `gorm:"size:20" json:"emergencyContact,omitempty"`
	MedicalHistory   string     `gorm:"type:text" json:"medicalHistory,omitempty"`
	Allergies        string     `gorm:"type:text" json:"allergies,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns the unique hospital ID. The sequence counts
// registrations within the current year.
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.UHID == "" {
		uhid, err := NextUHID(tx)
		if err != nil {
			return err
		}
		p.UHID = uhid
	}
	return nil
}

// NextUHID produces the next hospital ID in the form HMS-<year>-<seq>.
func NextUHID(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("HMS-%d-", year)

	var count int64
	if err := tx.Model(&Patient{}).Where("uhid LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", err
	}

	// Count collisions are possible when registrations race; step the
	// sequence forward until the ID is free.
	for seq := count + 1; ; seq++ {
		candidate := fmt.Sprintf("%s%06d", prefix, seq)
		var existing int64
		if err := tx.Model(&Patient{}).Where("uhid = ?", candidate).Count(&existing).Error; err != nil {
			return "", err
		}
		if existing == 0 {
			return candidate, nil
		}
	}
}
