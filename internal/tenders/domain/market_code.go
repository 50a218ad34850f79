package domain

// MarketCode is a BOAMP descriptor code and its label, used to build the
// descriptor filter in the UI.
type MarketCode struct {
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
}
