package inventory

import "context"

// Claves del almacén durable. Mismos nombres que el almacenamiento local del
// cliente original; los blobs no llevan versión de esquema (a diferencia del
// payload de exportación).
const (
	StorageKeyProducts = "inventoryProducts"
	StorageKeyHistory  = "inventoryReductionHistory"
)

// BlobStore almacén clave-valor durable. Put escribe todas las entradas como
// una sola unidad transaccional: nunca debe quedar una clave escrita y la otra no.
type BlobStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, entries map[string][]byte) error
}

// IdentityGenerator produce IDs de registro y códigos de producto.
// La unicidad del código contra el catálogo vivo la verifica el caso de uso.
type IdentityGenerator interface {
	NewID() string
	NewCode() string
}
