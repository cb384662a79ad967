package mysql_test

import (
	"testing"

	driver "github.com/go-sql-driver/mysql"

	mysqlrepo "hbnb_web/internal/storage/mysql"
)

func TestNormalizeDSN_ForcesParseTime(t *testing.T) {
	for _, dsn := range []string{
		"hbnb:secret@tcp(db:3306)/hbnb",
		"hbnb:secret@tcp(db:3306)/hbnb?parseTime=false&charset=utf8mb4",
	} {
		out, err := mysqlrepo.NormalizeDSN(dsn)
		if err != nil {
			t.Fatalf("NormalizeDSN(%q): %v", dsn, err)
		}
		cfg, err := driver.ParseDSN(out)
		if err != nil {
			t.Fatalf("reparse %q: %v", out, err)
		}
		if !cfg.ParseTime {
			t.Fatalf("expected parseTime in %q", out)
		}
		if cfg.DBName != "hbnb" || cfg.User != "hbnb" || cfg.Addr != "db:3306" {
			t.Fatalf("connection settings lost: %+v", cfg)
		}
	}
}

func TestNormalizeDSN_Invalid(t *testing.T) {
	if _, err := mysqlrepo.NormalizeDSN("not a dsn"); err == nil {
		t.Fatalf("expected an error")
	}
}
