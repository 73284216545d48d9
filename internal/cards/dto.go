package cards

type createRequest struct {
	Alias          string `json:"alias"`
	Brand          string `json:"brand"`
	Last4          string `json:"last4"`
	GatewayToken   string `json:"gatewayToken"`
	IsDefault      bool   `json:"isDefault"`
	AutopayEnabled bool   `json:"autopayEnabled"`
}

type updateRequest struct {
	Alias          *string `json:"alias"`
	AutopayEnabled *bool   `json:"autopayEnabled"`
	IsDefault      *bool   `json:"isDefault"`
}
