package models

// Department groups doctors by medical discipline.
type Department struct {
	BaseModel
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Doctor is the hospital profile attached to a DOCTOR user.
type Doctor struct {
	BaseModel
	UserID          string  `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DepartmentID    *string `gorm:"size:36" json:"departmentId,omitempty"`
	Specialization  string  `gorm:"size:100" json:"specialization,omitempty"`
	Qualification   string  `gorm:"size:200" json:"qualification,omitempty"`
	ExperienceYears int     `json:"experienceYears"`
	ConsultationFee float64 `json:"consultationFee"`
	LicenseNumber   string  `gorm:"size:50;uniqueIndex" json:"licenseNumber"`
	IsAvailable     bool    `gorm:"default:true" json:"isAvailable"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
