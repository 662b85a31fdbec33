package sqlgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownDialect is returned for a dialect name other than mysql or postgres.
var ErrUnknownDialect = errors.New("unknown sql dialect")

// Dialect holds the syntax differences between the supported databases.
type Dialect struct {
	Name      string
	DisableFK string
	EnableFK  string

	identQuote byte
	escaper    *strings.Replacer
}

var (
	MySQL = Dialect{
		Name:       "mysql",
		DisableFK:  "SET FOREIGN_KEY_CHECKS = 0",
		EnableFK:   "SET FOREIGN_KEY_CHECKS = 1",
		identQuote: '`',
		escaper:    strings.NewReplacer(`\`, `\\`, `'`, `''`),
	}
	Postgres = Dialect{
		Name:       "postgres",
		DisableFK:  "SET session_replication_role = 'replica'",
		EnableFK:   "SET session_replication_role = 'origin'",
		identQuote: '"',
		escaper:    strings.NewReplacer(`'`, `''`),
	}
)

// DialectFor looks a dialect up by name. An empty name selects mysql.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// Ident quotes a table or column name.
func (d Dialect) Ident(name string) string {
	q := string(d.identQuote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// Literal renders a Go value as an SQL literal. nil and empty strings become NULL.
func (d Dialect) Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		if val == "" {
			return "NULL"
		}
		return "'" + d.escaper.Replace(val) + "'"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return d.Literal(fmt.Sprint(val))
	}
}
