package postgresql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	other := errors.New("conn reset")

	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "publishing_tasks_video_id_fkey"}
	err := classify(fk)
	assert.ErrorIs(t, err, ErrForeignKey)
	assert.Contains(t, err.Error(), "publishing_tasks_video_id_fkey")

	assert.ErrorIs(t, classify(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}), ErrNotFound)
	assert.Same(t, other, classify(other))
}
