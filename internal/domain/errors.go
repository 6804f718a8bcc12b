package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("...: %w") y las capas
// externas los clasifican con errors.Is.
var (
	ErrValidation = errors.New("entrada inválida")
	ErrNotFound   = errors.New("recurso no encontrado")
	ErrFormat     = errors.New("documento sin datos de inventario válidos")
	ErrSchema     = errors.New("los datos no tienen el formato correcto")
	ErrStorage    = errors.New("error de almacenamiento")
)
