package model

import "github.com/shopspring/decimal"

// Settings is the restaurant profile edited from the back office. It feeds
// tax computation, invoice numbering and every rendered document.
type Settings struct {
	RestaurantName       string          `json:"restaurantName"`
	AppLogoURL           string          `json:"appLogoUrl"`
	Currency             string          `json:"currency"`
	TaxRate              decimal.Decimal `json:"taxRate"` // percent
	TaxRegime            string          `json:"taxRegime"`
	Phone                string          `json:"phone"`
	Address              string          `json:"address"`
	NIF                  string          `json:"nif"`
	CommercialReg        string          `json:"commercialReg"`
	CapitalSocial        string          `json:"capitalSocial"`
	Conservatoria        string          `json:"conservatoria"`
	AGTCertificate       string          `json:"agtCertificate"`
	InvoiceSeries        string          `json:"invoiceSeries"`
	KDSEnabled           bool            `json:"kdsEnabled"`
	AutoBackup           bool            `json:"autoBackup"`
	CustomDigitalMenuURL string          `json:"customDigitalMenuUrl"`
}

// DefaultSettings returns the profile a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		RestaurantName: "Tasca do Vereda",
		Currency:       "Kz",
		TaxRate:        decimal.NewFromInt(14),
		TaxRegime:      "GERAL",
		Phone:          "+244 923 000 000",
		Address:        "Via AL 15, Talatona, Luanda",
		NIF:            "5000000000",
		CommercialReg:  "L001-2025",
		CapitalSocial:  "100.000,00 Kz",
		Conservatoria:  "Conservatória do Registo Comercial de Luanda",
		AGTCertificate: "000/AGT/2025",
		InvoiceSeries:  "2025",
		KDSEnabled:     true,
		AutoBackup:     true,
	}
}

// UnitTax is the per-unit tax for price at the configured rate.
func (s Settings) UnitTax(price decimal.Decimal) decimal.Decimal {
	return price.Mul(s.TaxRate).Div(decimal.NewFromInt(100))
}
