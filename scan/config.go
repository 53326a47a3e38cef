package scan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/Lafeng/weakdh/crypto"
	"github.com/Lafeng/weakdh/exception"
	"github.com/Lafeng/weakdh/kex"
	"github.com/caarlos0/env/v11"
	"github.com/kardianos/osext"
	"gopkg.in/ini.v1"
)

const (
	CF_SCAN       = "Scan"
	CF_THRESHOLDS = "Thresholds"
	CF_PRIMALITY  = "Primality"
	CF_MARKERS    = "Markers"

	CONFIG_NAME = "weakdh.ini"
	NULL        = ""
)

var (
	CONF_ERROR = exception.New("Error field in config:")
	CONF_MISS  = exception.New("Config file not found:")
)

// ScanConf is the [Scan] section.
type ScanConf struct {
	CommonGroups string `ini:"CommonGroups" env:"WEAKDH_COMMON_GROUPS" importable:"common-groups.json"`
	Moduli       string `ini:"Moduli" env:"WEAKDH_MODULI"`
	Verbose      int    `ini:"Verbose" env:"WEAKDH_VERBOSE" importable:"0"`
	Color        string `ini:"Color" env:"WEAKDH_COLOR" importable:"auto"`
	Workers      int    `ini:"Workers" env:"WEAKDH_WORKERS" importable:"1"`
}

// ThresholdConf is the [Thresholds] section.
type ThresholdConf struct {
	Weak     int `ini:"Weak" importable:"768"`
	Academic int `ini:"Academic" importable:"1024"`
	Nation   int `ini:"Nation" importable:"1536"`
}

// PrimalityConf is the [Primality] section.
type PrimalityConf struct {
	Rounds    int `ini:"Rounds" env:"WEAKDH_PRIMALITY_ROUNDS" importable:"20"`
	CacheSize int `ini:"CacheSize" env:"WEAKDH_PRIME_CACHE_SIZE" importable:"256"`
}

// Config is immutable once LoadConfig returns.
type Config struct {
	Scan       ScanConf
	Thresholds ThresholdConf
	Primality  PrimalityConf
	Markers    kex.Markers
	filepath   string
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	c := new(Config)
	setFieldsDefaultValue(&c.Scan)
	setFieldsDefaultValue(&c.Thresholds)
	setFieldsDefaultValue(&c.Primality)
	c.Markers = kex.DefaultMarkers
	return c
}

// LoadConfig applies, in order, defaults, the ini file and the environment.
// Without an explicitly specified file a missing config is not an error.
func LoadConfig(specifiedFile string) (*Config, error) {
	c := NewConfig()
	file, err := DetectConfig(specifiedFile)
	if err != nil {
		return nil, err
	}
	if file != NULL {
		iniInstance, err := ini.Load(file)
		if err != nil {
			return nil, CONF_ERROR.Apply(err)
		}
		sections := []struct {
			name string
			ptr  interface{}
		}{
			{CF_SCAN, &c.Scan},
			{CF_THRESHOLDS, &c.Thresholds},
			{CF_PRIMALITY, &c.Primality},
			{CF_MARKERS, &c.Markers},
		}
		for _, s := range sections {
			if err = iniInstance.Section(s.name).MapTo(s.ptr); err != nil {
				return nil, CONF_ERROR.Apply(fmt.Sprintf("[%s] %v", s.name, err))
			}
		}
		c.filepath = file
	}
	if err = env.Parse(c); err != nil {
		return nil, CONF_ERROR.Apply(err)
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	if c.Scan.CommonGroups == NULL {
		return CONF_ERROR.Apply("CommonGroups")
	}
	switch strings.ToLower(c.Scan.Color) {
	case "auto", "always", "never":
	default:
		return CONF_ERROR.Apply("Color must be auto, always or never")
	}
	if c.Scan.Workers < 0 {
		return CONF_ERROR.Apply("Workers")
	}
	if c.Thresholds.Weak <= 0 || c.Thresholds.Academic <= 0 || c.Thresholds.Nation <= 0 {
		return CONF_ERROR.Apply("Thresholds must be positive")
	}
	if err := c.ClassifierThresholds().Validate(); err != nil {
		return err
	}
	if c.Primality.Rounds < 0 {
		return CONF_ERROR.Apply("Rounds")
	}
	if c.Primality.CacheSize < 0 {
		return CONF_ERROR.Apply("CacheSize")
	}
	return nil
}

// File is the loaded config file, empty when only defaults apply.
func (c *Config) File() string {
	return c.filepath
}

func (c *Config) ClassifierThresholds() crypto.Thresholds {
	return crypto.Thresholds{
		Weak:     uint(c.Thresholds.Weak),
		Academic: uint(c.Thresholds.Academic),
		Nation:   uint(c.Thresholds.Nation),
	}
}

// ModuliFiles splits the comma separated Moduli key.
func (c *Config) ModuliFiles() []string {
	var files []string
	for _, f := range strings.Split(c.Scan.Moduli, ",") {
		if f = strings.TrimSpace(f); f != NULL {
			files = append(files, f)
		}
	}
	return files
}

// CommonGroupsPath resolves a relative CommonGroups against the working
// directory, the config file folder and the executable folder, in that
// order. The first existing candidate wins; otherwise the value is returned
// unchanged so that loading reports it.
func (c *Config) CommonGroupsPath() string {
	p := c.Scan.CommonGroups
	if filepath.IsAbs(p) || !IsNotExist(p) {
		return p
	}
	var dirs []string
	if c.filepath != NULL {
		dirs = append(dirs, filepath.Dir(c.filepath))
	}
	if ef, err := osext.ExecutableFolder(); err == nil {
		dirs = append(dirs, ef)
	}
	for _, d := range dirs {
		if f := filepath.Join(d, p); !IsNotExist(f) {
			return f
		}
	}
	return p
}

// DetectConfig finds the config file: the specified one, or CONFIG_NAME in
// the working directory, next to the executable, in ~/.weakdh or in
// /etc/weakdh.
func DetectConfig(specifiedFile string) (string, error) {
	if specifiedFile != NULL {
		if IsNotExist(specifiedFile) {
			return NULL, CONF_MISS.Apply(specifiedFile)
		}
		return specifiedFile, nil
	}
	paths := []string{CONFIG_NAME} // cwd
	// same path with exe
	if ef, err := osext.ExecutableFolder(); err == nil {
		paths = append(paths, filepath.Join(ef, CONFIG_NAME))
	}
	var home string
	if u, err := user.Current(); err == nil {
		home = u.HomeDir
	} else {
		home = os.Getenv("HOME")
	}
	if home != NULL {
		paths = append(paths, filepath.Join(home, ".weakdh", CONFIG_NAME))
	}
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/weakdh/"+CONFIG_NAME)
	}
	for _, f := range paths {
		if !IsNotExist(f) {
			return f, nil
		}
	}
	return NULL, nil
}

// CreateConfigTemplate writes a config with all defaults to file, or to
// stdout when file is empty.
func CreateConfigTemplate(file string) (err error) {
	var w io.Writer
	if file == NULL {
		w = os.Stdout
	} else {
		var f *os.File
		f, err = os.OpenFile(file, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
		if err != nil {
			return
		}
		defer func() {
			if e := f.Close(); err == nil {
				err = e
			}
		}()
		w = f
	}
	return WriteConfigTemplate(w)
}

func WriteConfigTemplate(w io.Writer) error {
	c := NewConfig()
	iniInst := ini.Empty()

	sScan, _ := iniInst.NewSection(CF_SCAN)
	sScan.Comment = strings.TrimSpace(_CONF_HEADER)
	if err := sScan.ReflectFrom(&c.Scan); err != nil {
		return err
	}
	sScan.Key("CommonGroups").Comment = "Dataset of well-known groups (YAML or JSON); required"
	sScan.Key("Moduli").Comment = "Optional OpenSSH moduli files, comma separated"
	sScan.Key("Color").Comment = "auto, always or never"
	sScan.Key("Workers").Comment = "Transcripts analyzed at once, 0 for one per CPU"

	sThr, _ := iniInst.NewSection(CF_THRESHOLDS)
	sThr.Comment = "Lowest group size in bits of WEAK-INTERMEDIATE, INTERMEDIATE and STRONG"
	if err := sThr.ReflectFrom(&c.Thresholds); err != nil {
		return err
	}

	sPri, _ := iniInst.NewSection(CF_PRIMALITY)
	sPri.Comment = "Miller-Rabin rounds; CacheSize=0 disables memoization"
	if err := sPri.ReflectFrom(&c.Primality); err != nil {
		return err
	}

	if _, err := iniInst.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, _CONF_MARKERS)
	return err
}

// set default values by field tag
func setFieldsDefaultValue(str interface{}) {
	typ := reflect.TypeOf(str)
	val := reflect.ValueOf(str)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
		val = val.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		ft := typ.Field(i)
		fv := val.Field(i)
		imp, y := ft.Tag.Lookup("importable")
		if ft.Anonymous || !y {
			continue
		}
		switch k := fv.Kind(); k {
		case reflect.String:
			fv.SetString(imp)
		case reflect.Int:
			intVal, err := strconv.ParseInt(imp, 10, 0)
			if err == nil {
				fv.SetInt(intVal)
			}
		case reflect.Bool:
			b, err := strconv.ParseBool(imp)
			if err == nil {
				fv.SetBool(b)
			}
		default:
			panic(fmt.Errorf("unsupported %v", k))
		}
	}
}

func IsNotExist(file string) bool {
	_, err := os.Stat(file)
	return errors.Is(err, os.ErrNotExist)
}

const _CONF_HEADER = `
# -------------------------------------------------
#   weakdh configuration
#   Environment variables WEAKDH_* override this file,
#   command line options override both.
# -------------------------------------------------
`

const _CONF_MARKERS = `
# Transcript markers, only needed for a differently patched client.
# Quote values with leading or trailing spaces.
# [Markers]
# Algorithm           = "KEX algorithm chosen: "
# ClientSizes         = "KEX client group sizes: "
# ServerBits          = "KEX server-chosen group size in bits: "
# Prime               = " prime in hex: "
# Generator           = " generator in hex: "
# FixedGroupAlgorithm = diffie-hellman-group1-sha1
`
