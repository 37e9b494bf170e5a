package repository

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// wrapStorageErr annotates err with op and tags transport failures and deadlines
// as STORAGE_UNAVAILABLE. Statement level errors keep their identity.
func wrapStorageErr(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	if db.IsUnavailable(err) {
		return apperr.StorageUnavailableErr.WrapParent(err)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with wildcards in s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
