package domain

type UserProfile struct {
	Name          string               `json:"name"`
	Avatar        string               `json:"avatar,omitempty"`
	Email         string               `json:"email,omitempty"`
	Language      string               `json:"language,omitempty"`
	Theme         string               `json:"theme,omitempty"`
	DarkMode      bool                 `json:"darkMode"`
	Notifications NotificationSettings `json:"notificationSettings"`
	Security      SecuritySettings     `json:"securitySettings"`
}

type NotificationSettings struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	Sound bool `json:"sound"`
}

type SecuritySettings struct {
	TwoFactorEnabled   bool   `json:"twoFactorEnabled"`
	LastPasswordChange string `json:"lastPasswordChange"`
}
