package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Motor de inventario.
	ErrInvalidQuantity   = errors.New("cantidad inválida: debe ser un entero positivo")
	ErrInvalidKind       = errors.New("tipo de movimiento inválido: debe ser entrada o salida")
	ErrProductUnknown    = errors.New("producto desconocido")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStorageFailure    = errors.New("fallo de almacenamiento")
	ErrCommitUnknown     = errors.New("no se sabe si la transacción se confirmó")
)

// InsufficientStockError detalla un rechazo por stock insuficiente.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError envuelve un fallo del almacén durable. Salvo que Unconfirmed sea true la
// operación no dejó efectos (rollback completo) y el caller puede reintentar.
// Unconfirmed marca un commit interrumpido cuyo resultado en el servidor se desconoce.
type StorageError struct {
	Op          string
	Err         error
	Unconfirmed bool
}

func (e *StorageError) Error() string {
	if e.Unconfirmed {
		return fmt.Sprintf("%s: %s: %s: %v", ErrStorageFailure.Error(), ErrCommitUnknown.Error(), e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrStorageFailure.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	if e.Unconfirmed {
		return []error{ErrStorageFailure, ErrCommitUnknown, e.Err}
	}
	return []error{ErrStorageFailure, e.Err}
}

// NewStorageError construye un StorageError; devuelve nil si err es nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// NewUnconfirmedCommitError construye el StorageError de un commit sin respuesta del servidor.
func NewUnconfirmedCommitError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err, Unconfirmed: true}
}

// IsClientError indica si el error se debe a una entrada o regla de negocio corregible por el caller.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrProductUnknown) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsRetryable indica si reintentar la misma operación puede tener éxito sin duplicar efectos.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageFailure) && !errors.Is(err, ErrCommitUnknown)
}
