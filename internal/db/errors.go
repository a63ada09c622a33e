package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const duplicateKeyMarker = "for key '"

// DuplicateKey reports whether err is a MySQL duplicate entry error and, if so,
// the name of the unique index that rejected the row (table prefix stripped).
func DuplicateKey(err error) (string, bool) {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != DuplicateEntry {
		return "", false
	}

	idx := strings.LastIndex(mysqlErr.Message, duplicateKeyMarker)
	if idx == -1 {
		return "", true
	}

	key := strings.TrimSuffix(mysqlErr.Message[idx+len(duplicateKeyMarker):], "'")
	if dot := strings.LastIndex(key, "."); dot != -1 {
		key = key[dot+1:]
	}

	return key, true
}
