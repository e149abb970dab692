package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrUnregisteredTag   = errors.New("etiqueta RFID no registrada para esta empresa")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStorage           = errors.New("fallo de almacenamiento")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

// InsufficientStockError lleva el saldo actual para que el caller lo muestre.
// errors.Is(err, ErrInsufficientStock) sigue funcionando vía Unwrap.
type InsufficientStockError struct {
	Current   int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: saldo actual %d, solicitado %d", e.Current, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError envuelve fallos de infraestructura (conexión, deadlock, constraint).
// Es la única clase de error reintentable para los adaptadores; el motor nunca reintenta
// porque el resultado del commit sería ambiguo.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("fallo de almacenamiento en %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage) sin perder la causa original en Unwrap.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
