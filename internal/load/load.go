// Package load lee los extractos fuente (libros xlsx o bases sqlite) y los
// deja como datasets normalizados, con memoización por ruta+hoja.
package load

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dmendozad/tableros-vpo/internal/dataset"
	"github.com/pkg/errors"
)

// Loader memoiza los datasets cargados por ruta+hoja. Los extractos de
// referencia son de solo lectura, así que la entrada solo se invalida cuando
// cambia el mtime del fichero.
type Loader struct {
	mu    sync.Mutex
	cache map[string]entry
}

type entry struct {
	ds  *dataset.Dataset
	mod time.Time
}

func NewLoader() *Loader {
	return &Loader{cache: map[string]entry{}}
}

// Dataset carga la hoja pedida (o la tabla homónima si la fuente es sqlite)
// con las cabeceras ya normalizadas. El dataset devuelto se comparte entre
// renders: los llamadores no deben mutarlo, Prepare ya trabaja sobre copia.
func (l *Loader) Dataset(path, sheet string) (*dataset.Dataset, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "no se encontró el extracto %s", path)
	}
	key := path + "|" + sheet

	l.mu.Lock()
	if e, ok := l.cache[key]; ok && e.mod.Equal(st.ModTime()) {
		l.mu.Unlock()
		return e.ds, nil
	}
	l.mu.Unlock()

	var ds *dataset.Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		ds, err = fromSQLite(path, sheet)
	default:
		ds, err = fromExcel(path, sheet)
	}
	if err != nil {
		return nil, err
	}
	ds = dataset.Normalize(ds)

	l.mu.Lock()
	l.cache[key] = entry{ds: ds, mod: st.ModTime()}
	l.mu.Unlock()
	return ds, nil
}
