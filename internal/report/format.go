package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.EuropeanSpanish)

// FmtMoney formatea montos y conteos como entero con separador de miles:
// 1234567.8 -> "1,234,568".
func FmtMoney(f float64) string {
	s := fmt.Sprintf("%.0f", f)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtPct formatea porcentajes con dos decimales: 93.333 -> "93.33%".
func FmtPct(f float64) string {
	return fmt.Sprintf("%.2f%%", f)
}

// FmtPctShort es la etiqueta corta de las gráficas: un decimal.
func FmtPctShort(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// PrettyHeader vuelve legible un nombre de columna canónico:
// "TOTAL_PRESUPUESTO" -> "Total Presupuesto".
func PrettyHeader(col string) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(col, "_", " ")))
}

// SafeFile limpia un nombre para usarlo como fichero de exportación.
func SafeFile(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == '.' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, s)
	if s == "" {
		s = "export"
	}
	return s
}
