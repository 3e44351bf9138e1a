package dto

// UpdateProfileRequest is a partial update; omitted fields keep their value.
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name" validate:"omitempty,max=200"`
	Phone           *string `json:"phone" validate:"omitempty,max=50"`
	Location        *string `json:"location" validate:"omitempty,max=200"`
	ExperienceLevel *string `json:"experience_level" validate:"omitempty,max=50"`
}
