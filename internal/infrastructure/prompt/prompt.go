// Package prompt implementa el colaborador de confirmación síncrona.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin pregunta por la entrada estándar y acepta con "s" o "y".
type Stdin struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdin construye el prompt interactivo.
func NewStdin() *Stdin {
	return &Stdin{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Ask muestra el mensaje y bloquea hasta leer la respuesta.
func (p *Stdin) Ask(message string) bool {
	fmt.Fprintf(p.out, "%s (s/n): ", message)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "s" || answer == "si" || answer == "sí" || answer == "y"
}

// Auto responde siempre lo mismo. El adaptador HTTP lo usa con Answer=true:
// ahí la confirmación ya ocurrió del lado del cliente (confirm=1).
type Auto struct {
	Answer bool
}

// Ask devuelve la respuesta fija.
func (a Auto) Ask(string) bool { return a.Answer }
