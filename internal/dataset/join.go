package dataset

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrPartialJoin indica que el cruce territorial no pudo completarse y el
// dataset principal quedó sin modificar. Los filtros geográficos se degradan,
// el tablero sigue funcionando.
var ErrPartialJoin = errors.New("cruce territorial incompleto")

// GeoCandidates son los fragmentos de nombre que identifican columnas de
// atributo geográfico en la tabla de territorialidad.
var GeoCandidates = []string{
	"REGIÓN", "MUNICIPIO", "REGIONAL", "ZONAL", "PROVINCIA",
	"DEPARTAMENTO", "CATEGORIA_DEPARTAMENTO", "CATEGORIA_MUNICIPIO",
	"DESCRIPCIÓN_ZONA", "SUBREGIÓN", "DESCRIPCION_ZONA",
}

// Fold elimina diacríticos y pasa a minúsculas (para casar REGIÓN con REGION).
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// foldKey compara nombres de columna ignorando acentos y guiones bajos.
func foldKey(s string) string {
	return strings.ReplaceAll(Fold(s), "_", "")
}

// PadCode lleva un código administrativo a cadena de 5 dígitos con ceros a la
// izquierda, tolerando representaciones numéricas y pérdida de ceros iniciales.
func PadCode(v any) string {
	s := strings.TrimSpace(Str(v))
	if i := strings.IndexByte(s, '.'); i >= 0 {
		// códigos leídos como float ("5001.0")
		if allZeros(s[i+1:]) {
			s = s[:i]
		}
	}
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

func allZeros(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return true
}

// resolveKeyCol busca la columna de código en la referencia: igualdad exacta
// (normalizada) con keyCol, o en su defecto la primera columna.
func resolveKeyCol(geo *Dataset, keyCol string) string {
	for _, c := range geo.Cols {
		if NormalizeName(c) == NormalizeName(keyCol) {
			return c
		}
	}
	if len(geo.Cols) > 0 {
		return geo.Cols[0]
	}
	return ""
}

// geoAttrCols selecciona por subcadena difusa las columnas de atributo de la
// referencia, deduplicadas conservando el primer orden visto.
func geoAttrCols(geo *Dataset, keyCol string, candidates []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range geo.Cols {
		if c == keyCol {
			continue
		}
		for _, cand := range candidates {
			if strings.Contains(foldKey(c), foldKey(cand)) {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
				break
			}
		}
	}
	return out
}

// JoinGeo hace left join del dataset principal contra la referencia
// territorial por código zero-padded. Las filas sin pareja reciben "N/A" en
// cada atributo (nunca se descartan). La referencia se deduplica por código,
// gana la primera aparición. Si el cruce no es posible devuelve el principal
// intacto junto con ErrPartialJoin.
func JoinGeo(primary, geo *Dataset, keyCol string, candidates []string) (*Dataset, error) {
	if primary == nil {
		return nil, ErrPartialJoin
	}
	if geo.Empty() || !primary.HasCol(keyCol) {
		return primary, ErrPartialJoin
	}
	geoKey := resolveKeyCol(geo, keyCol)
	if geoKey == "" {
		return primary, ErrPartialJoin
	}
	attrs := geoAttrCols(geo, geoKey, candidates)
	if len(attrs) == 0 {
		return primary, ErrPartialJoin
	}

	// referencia deduplicada por código
	lookup := make(map[string]map[string]any, len(geo.Rows))
	for _, r := range geo.Rows {
		k := PadCode(r[geoKey])
		if _, ok := lookup[k]; !ok {
			lookup[k] = r
		}
	}

	// columnas del resultado: las del principal (sin las que colisionan con
	// atributos) más los atributos; la columna auxiliar de cruce no aparece.
	attrSet := map[string]bool{}
	for _, a := range attrs {
		attrSet[a] = true
	}
	out := &Dataset{}
	for _, c := range primary.Cols {
		if !attrSet[c] {
			out.Cols = append(out.Cols, c)
		}
	}
	out.Cols = append(out.Cols, attrs...)

	out.Rows = make([]map[string]any, 0, len(primary.Rows))
	for _, r := range primary.Rows {
		m := make(map[string]any, len(r)+len(attrs))
		for _, c := range primary.Cols {
			if !attrSet[c] {
				m[c] = r[c]
			}
		}
		match := lookup[PadCode(r[keyCol])]
		for _, a := range attrs {
			if match != nil && match[a] != nil && strings.TrimSpace(Str(match[a])) != "" {
				m[a] = match[a]
			} else {
				m[a] = NA
			}
		}
		out.Rows = append(out.Rows, m)
	}
	return out, nil
}
