package dues

type createRequest struct {
	AthleteID uint   `json:"athleteId"`
	PayerID   uint   `json:"payerId"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	Notes     string `json:"notes"`
}

type waiveRequest struct {
	Notes string `json:"notes"`
}
