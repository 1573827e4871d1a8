package dataset

import (
	"errors"
	"testing"
)

func TestPadCode(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"5001", "05001"},
		{5001, "05001"},
		{"5001.0", "05001"},
		{"05001", "05001"},
		{"11001", "11001"},
		{"91", "00091"},
	}
	for _, c := range cases {
		if got := PadCode(c.in); got != c.want {
			t.Errorf("PadCode(%v) = %q, quería %q", c.in, got, c.want)
		}
	}
}

func TestFold(t *testing.T) {
	if Fold("REGIÓN") != "region" {
		t.Errorf("Fold(REGIÓN) = %q", Fold("REGIÓN"))
	}
	if foldKey("DESCRIPCIÓN_ZONA") != foldKey("DESCRIPCION_ZONA") {
		t.Errorf("foldKey no iguala variantes con y sin tilde")
	}
}

func geoFixture() *Dataset {
	geo := New("DANE", "REGIÓN", "DEPARTAMENTO", "MUNICIPIO")
	geo.Append(map[string]any{"DANE": "5001", "REGIÓN": "ANTIOQUIA", "DEPARTAMENTO": "ANTIOQUIA", "MUNICIPIO": "MEDELLÍN"})
	// duplicado: debe ganar la primera aparición
	geo.Append(map[string]any{"DANE": "05001", "REGIÓN": "DUPLICADA", "DEPARTAMENTO": "X", "MUNICIPIO": "X"})
	geo.Append(map[string]any{"DANE": "11001", "REGIÓN": "CENTRO", "DEPARTAMENTO": "BOGOTÁ D.C.", "MUNICIPIO": ""})
	return geo
}

func TestJoinGeo(t *testing.T) {
	primary := New("DANE", "VALOR")
	primary.Append(map[string]any{"DANE": 5001, "VALOR": 10.0})
	primary.Append(map[string]any{"DANE": "11001", "VALOR": 20.0})
	primary.Append(map[string]any{"DANE": "99999", "VALOR": 30.0})

	out, err := JoinGeo(primary, geoFixture(), "DANE", GeoCandidates)
	if err != nil {
		t.Fatalf("JoinGeo: %v", err)
	}
	if len(out.Rows) != 3 {
		t.Fatalf("el left join descartó filas: %d", len(out.Rows))
	}
	if out.Rows[0]["REGIÓN"] != "ANTIOQUIA" {
		t.Errorf("no ganó la primera aparición del código duplicado: %v", out.Rows[0]["REGIÓN"])
	}
	// atributo vacío en la referencia -> N/A
	if out.Rows[1]["MUNICIPIO"] != NA {
		t.Errorf("atributo vacío debía ser %q, fue %v", NA, out.Rows[1]["MUNICIPIO"])
	}
	// código sin pareja -> N/A en todos los atributos
	for _, a := range []string{"REGIÓN", "DEPARTAMENTO", "MUNICIPIO"} {
		if out.Rows[2][a] != NA {
			t.Errorf("fila sin pareja: %s = %v, quería %q", a, out.Rows[2][a], NA)
		}
	}
	if out.Rows[2]["VALOR"] != 30.0 {
		t.Errorf("el join perdió columnas del principal")
	}
}

func TestJoinGeoParcial(t *testing.T) {
	primary := New("OTRA", "VALOR")
	primary.Append(map[string]any{"OTRA": "x", "VALOR": 1.0})

	out, err := JoinGeo(primary, geoFixture(), "DANE", GeoCandidates)
	if !errors.Is(err, ErrPartialJoin) {
		t.Fatalf("sin columna de cruce debía dar ErrPartialJoin, dio %v", err)
	}
	if out != primary {
		t.Errorf("con cruce parcial el principal debe quedar intacto")
	}

	if _, err := JoinGeo(primary, New("DANE"), "DANE", GeoCandidates); !errors.Is(err, ErrPartialJoin) {
		t.Errorf("referencia vacía debía dar ErrPartialJoin")
	}
}
