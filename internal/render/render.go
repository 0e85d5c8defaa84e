// Package render formats canonical records into HTML captions for the
// delivery channel.
package render

import (
	"fmt"
	"strings"
	"time"
)

var countryNames = map[string]string{
	"AU": "Australia", "AT": "Austria", "AZ": "Azerbaijan", "AL": "Albania", "DZ": "Algeria", "AE": "UAE", "AR": "Argentina",
	"AM": "Armenia", "BD": "Bangladesh", "BY": "Belarus", "BE": "Belgium", "BG": "Bulgaria", "BR": "Brazil", "GB": "United Kingdom",
	"HU": "Hungary", "VE": "Venezuela", "VN": "Vietnam", "DE": "Germany", "GR": "Greece", "GE": "Georgia", "DK": "Denmark",
	"EG": "Egypt", "IL": "Israel", "IN": "India", "ID": "Indonesia", "IQ": "Iraq", "IR": "Iran", "IE": "Ireland", "ES": "Spain",
	"IT": "Italy", "KZ": "Kazakhstan", "KH": "Cambodia", "CA": "Canada", "QA": "Qatar", "CY": "Cyprus", "KG": "Kyrgyzstan",
	"CN": "China", "CO": "Colombia", "KW": "Kuwait", "LV": "Latvia", "LB": "Lebanon", "LT": "Lithuania", "MY": "Malaysia",
	"MA": "Morocco", "MX": "Mexico", "MD": "Moldova", "MN": "Mongolia", "MM": "Myanmar", "NP": "Nepal", "NL": "Netherlands",
	"NZ": "New Zealand", "NO": "Norway", "OM": "Oman", "PK": "Pakistan", "PE": "Peru", "PL": "Poland", "PT": "Portugal",
	"PR": "Puerto Rico", "KR": "South Korea", "RU": "Russia", "RO": "Romania", "SA": "Saudi Arabia", "RS": "Serbia",
	"SG": "Singapore", "SK": "Slovakia", "SI": "Slovenia", "US": "USA", "TH": "Thailand", "TW": "Taiwan", "TR": "Turkey",
	"UZ": "Uzbekistan", "UA": "Ukraine", "UY": "Uruguay", "PH": "Philippines", "FI": "Finland", "FR": "France", "HR": "Croatia",
	"CZ": "Czech Republic", "CL": "Chile", "CH": "Switzerland", "SE": "Sweden", "LK": "Sri Lanka", "EC": "Ecuador",
	"EE": "Estonia", "ZA": "South Africa", "JP": "Japan",
}

// EscapeHTML escapes the three characters the delivery channel's HTML
// parse mode is sensitive to.
func EscapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// CountryName maps an ISO code to a display name, falling back to the
// uppercased code itself.
func CountryName(code string) string {
	if code == "" {
		return "N/A"
	}
	up := strings.ToUpper(code)
	if name, ok := countryNames[up]; ok {
		return name
	}
	return up
}

// FormatK renders counters in compact form: 999, 5.3k, 1.2m.
func FormatK(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000000)) + "m"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatTimestamp renders a unix timestamp as dd.mm.yyyy in UTC.
func FormatTimestamp(unix int64) string {
	if unix == 0 {
		return "N/A"
	}
	return time.Unix(unix, 0).UTC().Format("02.01.2006")
}
