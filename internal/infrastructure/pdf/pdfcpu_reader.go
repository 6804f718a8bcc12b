package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tu-usuario/inventario-local/internal/application/transport"
)

// PdfcpuDocumentReader implementa transport.DocumentReader usando pdfcpu.
// Solo valida que el contenedor abra y cuenta páginas; el escaneo del payload
// lo hace el códec sobre los bytes crudos.
type PdfcpuDocumentReader struct {
	conf *model.Configuration
}

// NewPdfcpuDocumentReader construye el lector con la configuración relajada
// por defecto (tolera documentos imperfectos, como hace cualquier visor).
func NewPdfcpuDocumentReader() *PdfcpuDocumentReader {
	return &PdfcpuDocumentReader{conf: model.NewDefaultConfiguration()}
}

// Open abre los bytes como PDF y devuelve el documento con sus bytes crudos.
func (r *PdfcpuDocumentReader) Open(raw []byte) (*transport.Document, error) {
	pages, err := api.PageCount(bytes.NewReader(raw), r.conf)
	if err != nil {
		return nil, fmt.Errorf("abrir documento PDF: %w", err)
	}
	return &transport.Document{Pages: pages, Raw: raw}, nil
}
