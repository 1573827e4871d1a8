// Package config define la configuración del binario y su carga desde YAML.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Configuration agrupa toda la configuración de tableros.
type Configuration struct {
	Data    Data
	Server  Server
	Logging Logging
}

// Data localiza los extractos fuente. Un origen con extensión .sqlite o .db
// se lee de esa base en vez de un libro de cálculo.
type Data struct {
	Dir             string // carpeta base de los extractos
	Informes        string // libro principal (hojas ingreso, componentes, poblacion)
	Territorialidad string // referencia territorial (hoja cobertura_eps)
	SGSSS           string // consolidado SGSSS (hoja consolidado)

	SheetIngreso     string
	SheetComponentes string
	SheetPoblacion   string
	SheetCobertura   string
	SheetConsolidado string
}

type Server struct {
	Addr string
}

type Logging struct {
	Level  string // debug|info|warn|error
	Format string // console|json
}

// Load lee la configuración YAML de la ruta dada y aplica los valores por
// defecto de despliegue.
func Load(path string) (*Configuration, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	viper.SetDefault("data.dir", "DATOS")
	viper.SetDefault("data.informes", "informes_vpo.xlsx")
	viper.SetDefault("data.territorialidad", "territorialidad_por_municipio_v5.xlsx")
	viper.SetDefault("data.sgsss", "poblacion_sgsss.xlsx")
	viper.SetDefault("data.sheetingreso", "ingreso")
	viper.SetDefault("data.sheetcomponentes", "componentes")
	viper.SetDefault("data.sheetpoblacion", "poblacion")
	viper.SetDefault("data.sheetcobertura", "cobertura_eps")
	viper.SetDefault("data.sheetconsolidado", "consolidado")
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("no se pudo leer la configuración %s: %w", path, err)
	}
	var conf Configuration
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	return &conf, nil
}

// Default devuelve la configuración sin fichero, solo valores por defecto.
func Default() *Configuration {
	return &Configuration{
		Data: Data{
			Dir:              "DATOS",
			Informes:         "informes_vpo.xlsx",
			Territorialidad:  "territorialidad_por_municipio_v5.xlsx",
			SGSSS:            "poblacion_sgsss.xlsx",
			SheetIngreso:     "ingreso",
			SheetComponentes: "componentes",
			SheetPoblacion:   "poblacion",
			SheetCobertura:   "cobertura_eps",
			SheetConsolidado: "consolidado",
		},
		Server:  Server{Addr: "127.0.0.1:8080"},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

func (d Data) InformesPath() string        { return filepath.Join(d.Dir, d.Informes) }
func (d Data) TerritorialidadPath() string { return filepath.Join(d.Dir, d.Territorialidad) }
func (d Data) SGSSSPath() string           { return filepath.Join(d.Dir, d.SGSSS) }
