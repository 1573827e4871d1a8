package load

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

// fromSQLite lee la tabla homónima a la hoja desde una base sqlite, en modo
// solo lectura. Permite servir extractos ya consolidados sin pasar por Excel.
func fromSQLite(path, table string) (*dataset.Dataset, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "no se pudo abrir %s", path)
	}
	defer db.Close()
	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, err
	}

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(table)))
	if err != nil {
		return nil, errors.Wrapf(err, "no se pudo leer la tabla %q de %s", table, path)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	ds := dataset.New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				m[c] = string(b)
			} else {
				m[c] = vals[i]
			}
		}
		ds.Append(m)
	}
	return ds, rows.Err()
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
