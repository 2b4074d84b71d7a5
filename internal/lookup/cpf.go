package lookup

import "regexp"

var (
	nonDigits = regexp.MustCompile(`[^0-9]`)
	cpfInURL  = regexp.MustCompile(`/(\d{11})(?:\?|$|/)`)
)

// NormalizeCPF drops every non-digit character, so "123.456.789-01" becomes
// "12345678901".
func NormalizeCPF(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// ValidCPFFormat reports whether cpf is exactly 11 digits. Check digits are
// not verified.
func ValidCPFFormat(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatCPF renders an 11-digit CPF as 000.000.000-00. Other input is
// returned unchanged.
func FormatCPF(cpf string) string {
	if !ValidCPFFormat(cpf) {
		return cpf
	}
	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}

// ExtractCPFFromURL finds an 11-digit path segment such as
// https://example.com/12345678901?x=1.
func ExtractCPFFromURL(rawURL string) (string, bool) {
	m := cpfInURL.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
