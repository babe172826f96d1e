package dto

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type PhotoResponse struct {
	PhotoURL string `json:"photo_url"`
}

type LocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type LocationResponse struct {
	Updated bool `json:"updated"`
}

type UpdateSettingsRequest struct {
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	MapStyle             *string `json:"map_style"`
}

type BootstrapResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
	Redirect      string        `json:"redirect"`
}
