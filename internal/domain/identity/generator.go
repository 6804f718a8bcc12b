// Package identity genera identificadores de registro y códigos de producto.
package identity

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Generator produce IDs opacos (UUID v4) y códigos de producto con formato
// PRD + 6 dígitos finales del epoch en milisegundos + 3 dígitos aleatorios.
// El espacio de códigos es pequeño a propósito (legible por humanos); la
// unicidad real la verifica el catálogo con reintentos.
type Generator struct{}

// New construye el generador.
func New() *Generator { return &Generator{} }

// NewID identificador de registro, prácticamente único, nunca visible al usuario.
func (g *Generator) NewID() string {
	return uuid.New().String()
}

// NewCode código corto de producto, p. ej. PRD483921007.
func (g *Generator) NewCode() string {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	tail := millis[len(millis)-6:]
	return fmt.Sprintf("PRD%s%03d", tail, rand.Intn(1000))
}
