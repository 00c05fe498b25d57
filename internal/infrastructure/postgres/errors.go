package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventario-tienda/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

// violatedConstraint devuelve el nombre del constraint violado, o "" si err no es un PgError.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// classify traduce un error de pgx al error de dominio: violaciones de integridad a errores
// del caller, todo lo demás (conexión, contención, timeout, cancelación) a StorageError.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrConflict
	case hasCode(err, codeNumericOutOfRange):
		return domain.ErrInvalidInput
	}
	return domain.NewStorageError(op, err)
}

// classifyTxError conserva los errores de dominio devueltos dentro de la transacción
// y convierte en StorageError cualquier otro.
func classifyTxError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStorageFailure),
		domain.IsClientError(err),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNotFound):
		return err
	}
	return domain.NewStorageError("transaction", err)
}

// commitError clasifica un fallo de COMMIT. Si el servidor respondió con error o la orden no
// llegó a enviarse, la transacción quedó descartada; en otro caso el resultado se desconoce.
func commitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || errors.Is(err, pgx.ErrTxCommitRollback) || pgconn.SafeToRetry(err) {
		return domain.NewStorageError("commit transaction", err)
	}
	return domain.NewUnconfirmedCommitError("commit transaction", err)
}
