package dto

type SlotResponse struct {
	Time      string `json:"time"`
	DateTime  string `json:"date_time"`
	Status    string `json:"status"`
	Available bool   `json:"available"`
}

type DaySlotsResponse struct {
	Date    string         `json:"date"`
	DayName string         `json:"day_name"`
	Label   string         `json:"label"` // dd/mm
	Slots   []SlotResponse `json:"slots"`
}

type SlotGridResponse struct {
	Title       string             `json:"title"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	SlotMinutes int                `json:"slot_minutes"`
	Days        []DaySlotsResponse `json:"days"`
	CSRFToken   string             `json:"csrf_token,omitempty"`
}

type CSRFTokenResponse struct {
	Token string `json:"token"`
}
